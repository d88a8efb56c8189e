// Package section defines the fixed wire sections shared by sensor and
// mesh packets: the 4-byte header and the presence-byte chain.
package section

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
)

const (
	// HeaderSize is the fixed packet header size in bytes.
	HeaderSize = 4
	// HeaderBits is the header size in bits.
	HeaderBits = 32
	// MinPacketSize is the smallest decodable sensor packet: header plus
	// presence byte 0.
	MinPacketSize = HeaderSize + 1

	// MaxVariant is the highest sensor variant value.
	MaxVariant = 14
	// ReservedVariant is the 4-bit value claimed by the mesh layer.
	ReservedVariant = 15
	// MaxStation is the highest 12-bit station id.
	MaxStation = 4095
)

// Header is the 4-byte packet header shared by every sensor and mesh
// packet: variant (4 bits), station id (12 bits), sequence (16 bits),
// big-endian bit order.
type Header struct {
	Variant  uint8
	Station  uint16
	Sequence uint16
}

// Validate checks the header fields for a sensor packet. The reserved
// variant and out-of-range stations are rejected; sequence is free-running.
func (h Header) Validate() error {
	if h.Variant == ReservedVariant {
		return errs.ErrReservedVariant
	}
	if h.Variant > MaxVariant {
		return errs.ErrVariantTooHigh
	}
	if h.Station > MaxStation {
		return errs.ErrStationTooHigh
	}

	return nil
}

// Pack writes the header through the bit writer.
func (h Header) Pack(w *bitstream.Writer) {
	w.WriteBits(uint32(h.Variant), 4)
	w.WriteBits(uint32(h.Station), 12)
	w.WriteBits(uint32(h.Sequence), 16)
}

// Parse reads the header from the start of data.
//
// Returns ErrDecodeTooShort when fewer than HeaderSize bytes are
// available. No variant validation happens here: mesh packets carry the
// reserved value and route through this same parse.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrDecodeTooShort
	}

	r := bitstream.NewReader(data)
	h.Variant = uint8(r.ReadBits(4))
	h.Station = uint16(r.ReadBits(12))
	h.Sequence = uint16(r.ReadBits(16))

	return nil
}

// Bytes serializes the header into a fresh 4-byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	w := bitstream.NewWriter(b)
	h.Pack(w)

	return b
}
