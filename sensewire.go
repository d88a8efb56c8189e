// Package sensewire implements a deterministic, bit-packed telemetry
// codec for constrained sensor stations, plus the mesh relay protocol
// that shares its 4-byte header.
//
// The codec trades generality for density: every field kind has a fixed
// quantization (packet/quant), variants declare which kinds a station
// may send (variant), and a presence-byte chain marks which of those
// are in a given packet (section). Typical packets are 6-20 bytes.
//
// Layered on top are typed extension records (tlv), a JSON bridge
// (jsonio), compressed batch archival (archive, compress) and the mesh
// control layer (mesh).
//
// This file re-exports the common entry points so simple callers only
// import the module root.
package sensewire

import (
	"github.com/nimbuslab/sensewire/packet"
	"github.com/nimbuslab/sensewire/variant"
)

// NewEncoder creates a packet encoder against the default variant
// catalog. See packet.Encoder for the Begin/Set/End life cycle.
func NewEncoder() *packet.Encoder {
	return packet.NewEncoder()
}

// Decode parses one packet against the default variant catalog.
func Decode(data []byte) (*packet.Packet, error) {
	return packet.Decode(data)
}

// RegisterVariant binds a custom layout to a variant code in the
// default catalog. Call once at startup, before any traffic.
func RegisterVariant(code uint8, def *variant.Definition) error {
	return variant.Default().Register(code, def)
}
