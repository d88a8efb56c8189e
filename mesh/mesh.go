// Package mesh implements the relay control protocol that shares the
// sensor wire header: gateway beacons, sensor-packet forwarding with
// TTL, acknowledgements, route errors and topology maintenance.
//
// Every mesh packet carries the ordinary 4-byte header with the variant
// nibble fixed to the reserved value, followed by a 4-bit control type
// and a type-specific payload.
package mesh

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
	"github.com/nimbuslab/sensewire/section"
)

// Type is the 4-bit mesh control type carried after the header.
type Type uint8

const (
	TypeBeacon          Type = 0x1
	TypeForward         Type = 0x2
	TypeAck             Type = 0x3
	TypeRouteError      Type = 0x4
	TypeNeighbourReport Type = 0x5
	TypePing            Type = 0x6
	TypePong            Type = 0x7
)

func (t Type) String() string {
	switch t {
	case TypeBeacon:
		return "beacon"
	case TypeForward:
		return "forward"
	case TypeAck:
		return "ack"
	case TypeRouteError:
		return "route_error"
	case TypeNeighbourReport:
		return "neighbour_report"
	case TypePing:
		return "ping"
	case TypePong:
		return "pong"
	}

	return "unknown"
}

// MinSize is the smallest mesh packet: header plus the control byte.
const MinSize = section.HeaderSize + 1

// Message is one parsed mesh control packet.
type Message interface {
	// Type returns the 4-bit control type.
	Type() Type
	// Bytes serializes the message, header included.
	Bytes() ([]byte, error)
}

// Peek returns the control type of a mesh buffer without a full parse.
func Peek(data []byte) (Type, error) {
	if len(data) < MinSize {
		return 0, errs.ErrMeshTooShort
	}

	return Type(data[section.HeaderSize] >> 4), nil
}

// Decode parses one mesh packet. The header variant must be the
// reserved mesh value; sensor variants are rejected with ErrMeshNotMesh
// so receive loops can route them to the sensor decoder instead.
func Decode(data []byte) (Message, error) {
	if len(data) < MinSize {
		return nil, errs.ErrMeshTooShort
	}

	var header section.Header
	if err := header.Parse(data); err != nil {
		return nil, err
	}
	if header.Variant != section.ReservedVariant {
		return nil, errs.ErrMeshNotMesh
	}

	r := bitstream.NewReader(data)
	r.Skip(section.HeaderBits)

	switch Type(r.ReadBits(4)) {
	case TypeBeacon:
		return parseBeacon(header, r, data)
	case TypeForward:
		return parseForward(header, r, data)
	case TypeAck:
		return parseAck(header, r, data)
	case TypeRouteError:
		return parseRouteError(header, r, data)
	case TypeNeighbourReport:
		return parseNeighbourReport(header, r, data)
	case TypePing:
		return parseEcho(TypePing, header, r, data)
	case TypePong:
		return parseEcho(TypePong, header, r, data)
	}

	return nil, errs.ErrMeshUnknownType
}

// meshHeader builds the fixed reserved-variant header for an outgoing
// mesh packet.
func meshHeader(station, sequence uint16) section.Header {
	return section.Header{
		Variant:  section.ReservedVariant,
		Station:  station,
		Sequence: sequence,
	}
}
