package section

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
)

const (
	// MaxPresenceBytes is the hard cap on the extension-bit chain.
	MaxPresenceBytes = 4
	// Byte0Slots is the number of data slots in presence byte 0; the two
	// remaining bits are the extension flag and the TLV flag.
	Byte0Slots = 6
	// ByteNSlots is the number of data slots in every later presence byte.
	ByteNSlots = 7
	// MaxSlots is the slot capacity of a full presence chain.
	MaxSlots = Byte0Slots + (MaxPresenceBytes-1)*ByteNSlots
)

// SlotPosition returns the presence byte index and the bit position
// (7 = MSB) a variant slot occupies.
//
// Byte 0 is laid out extension(7) | tlv(6) | slot0(5) .. slot5(0);
// byte N >= 1 is extension(7) | slot(6) .. slot(0). Bits are assigned in
// slot order, matching the order the framer writes them through the
// shared bit writer.
func SlotPosition(slot int) (byteIdx, bit int) {
	if slot < Byte0Slots {
		return 0, 5 - slot
	}

	slot -= Byte0Slots

	return 1 + slot/ByteNSlots, 6 - slot%ByteNSlots
}

// BuildPresence computes the minimal presence chain covering the
// populated slots. populated is indexed by variant slot; hasTLV sets the
// TLV flag in byte 0. The chain is always at least one byte, and the
// extension bit is set on every byte except the last one emitted.
func BuildPresence(populated []bool, hasTLV bool) ([]byte, error) {
	if len(populated) > MaxSlots {
		return nil, errs.ErrVariantSlotCount
	}

	need := 1
	chain := make([]byte, MaxPresenceBytes)
	for slot, set := range populated {
		if !set {
			continue
		}
		byteIdx, bit := SlotPosition(slot)
		chain[byteIdx] |= 1 << bit
		if byteIdx+1 > need {
			need = byteIdx + 1
		}
	}

	if hasTLV {
		chain[0] |= 1 << 6
	}
	for i := 0; i < need-1; i++ {
		chain[i] |= 1 << 7
	}

	return chain[:need], nil
}

// ReadPresence consumes the presence chain from the reader, following
// the extension bit up to MaxPresenceBytes. It returns the raw chain
// bytes and the TLV flag from byte 0.
//
// A chain that claims more than MaxPresenceBytes is cut at the cap; the
// spare extension bit in the last byte is preserved in the raw bytes but
// not followed.
func ReadPresence(r *bitstream.Reader) (chain []byte, hasTLV bool, err error) {
	if r.Remaining() < 8 {
		return nil, false, errs.ErrDecodeTooShort
	}

	chain = make([]byte, 0, MaxPresenceBytes)
	for {
		if r.Remaining() < 8 {
			return nil, false, errs.ErrDecodeTruncated
		}
		b := byte(r.ReadBits(8))
		chain = append(chain, b)

		if b&(1<<7) == 0 || len(chain) == MaxPresenceBytes {
			break
		}
	}

	return chain, chain[0]&(1<<6) != 0, nil
}

// SlotPresent reports whether the chain marks the given variant slot as
// populated. Slots beyond the received chain are absent, not an error.
func SlotPresent(chain []byte, slot int) bool {
	byteIdx, bit := SlotPosition(slot)
	if byteIdx >= len(chain) {
		return false
	}

	return chain[byteIdx]&(1<<bit) != 0
}
