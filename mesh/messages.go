package mesh

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/internal/bitstream"
	"github.com/nimbuslab/sensewire/section"
)

// Fixed wire sizes per control type, in bytes.
const (
	BeaconSize     = 9
	ForwardMinSize = 6 // envelope only; the embedded packet follows
	AckSize        = 8
	RouteErrorSize = 5
	EchoSize       = 6
)

// MaxTTL is the largest FORWARD hop budget.
const MaxTTL = 255

// Route error reason codes.
const (
	ReasonParentLost = 0x1
	ReasonOverloaded = 0x2
	ReasonShutdown   = 0x3
)

// Beacon is the gateway announcement: broadcast periodically so nodes
// can pick an uplink by hop cost and detect gateway restarts through
// the generation counter.
type Beacon struct {
	Station    uint16 // announcing node
	Sequence   uint16
	Gateway    uint16 // 12-bit gateway id
	HopCost    uint8  // hops from the announcer to the gateway
	Flags      uint8  // 4-bit announcement flags
	Generation uint16 // 12-bit gateway epoch, mod 4096
}

func (b *Beacon) Type() Type { return TypeBeacon }

func (b *Beacon) Bytes() ([]byte, error) {
	if b.Station > section.MaxStation || b.Gateway > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}

	buf := make([]byte, BeaconSize)
	w := bitstream.NewWriter(buf)
	meshHeader(b.Station, b.Sequence).Pack(w)
	w.WriteBits(uint32(TypeBeacon), 4)
	w.WriteBits(uint32(b.Gateway), 12)
	w.WriteBits(uint32(b.HopCost), 8)
	w.WriteBits(uint32(b.Flags&0x0F), 4)
	w.WriteBits(uint32(b.Generation&0x0FFF), 12)

	return buf, nil
}

func parseBeacon(h section.Header, r *bitstream.Reader, data []byte) (*Beacon, error) {
	if len(data) < BeaconSize {
		return nil, errs.ErrMeshTooShort
	}

	return &Beacon{
		Station:    h.Station,
		Sequence:   h.Sequence,
		Gateway:    uint16(r.ReadBits(12)),
		HopCost:    uint8(r.ReadBits(8)),
		Flags:      uint8(r.ReadBits(4)),
		Generation: uint16(r.ReadBits(12)),
	}, nil
}

// Forward wraps a complete sensor packet for relay toward the gateway.
// The embedded packet travels verbatim and byte-aligned; its own header
// identifies the originating station.
type Forward struct {
	Station  uint16 // relaying node, not the origin
	Sequence uint16
	TTL      uint8
	Inner    []byte
}

func (f *Forward) Type() Type { return TypeForward }

func (f *Forward) Bytes() ([]byte, error) {
	if f.Station > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}
	if len(f.Inner) < section.MinPacketSize {
		return nil, errs.ErrMeshInnerTooShort
	}

	buf := make([]byte, ForwardMinSize+len(f.Inner))
	w := bitstream.NewWriter(buf)
	meshHeader(f.Station, f.Sequence).Pack(w)
	w.WriteBits(uint32(TypeForward), 4)
	w.WriteBits(uint32(f.TTL>>4), 4)
	w.WriteBits(uint32(f.TTL&0x0F), 4)
	w.WriteBits(0, 4) // reserved
	copy(buf[ForwardMinSize:], f.Inner)

	return buf, nil
}

// Origin reads the originating station and sequence from the embedded
// packet's own header, independent of the outer relay header.
func (f *Forward) Origin() (station, sequence uint16, err error) {
	var inner section.Header
	if err := inner.Parse(f.Inner); err != nil {
		return 0, 0, errs.ErrMeshInnerTooShort
	}

	return inner.Station, inner.Sequence, nil
}

func parseForward(h section.Header, r *bitstream.Reader, data []byte) (*Forward, error) {
	if len(data) < ForwardMinSize+section.MinPacketSize {
		return nil, errs.ErrMeshInnerTooShort
	}

	ttlHi := r.ReadBits(4)
	ttlLo := r.ReadBits(4)
	r.Skip(4) // reserved

	inner := make([]byte, len(data)-ForwardMinSize)
	copy(inner, data[ForwardMinSize:])

	return &Forward{
		Station:  h.Station,
		Sequence: h.Sequence,
		TTL:      uint8(ttlHi<<4 | ttlLo),
		Inner:    inner,
	}, nil
}

// Ack acknowledges a forwarded packet back toward its origin, echoing
// the embedded packet's station and sequence.
type Ack struct {
	Station        uint16 // acknowledging node
	Sequence       uint16
	OriginStation  uint16
	OriginSequence uint16
}

func (a *Ack) Type() Type { return TypeAck }

func (a *Ack) Bytes() ([]byte, error) {
	if a.Station > section.MaxStation || a.OriginStation > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}

	buf := make([]byte, AckSize)
	w := bitstream.NewWriter(buf)
	meshHeader(a.Station, a.Sequence).Pack(w)
	w.WriteBits(uint32(TypeAck), 4)
	w.WriteBits(uint32(a.OriginStation), 12)
	w.WriteBits(uint32(a.OriginSequence), 16)

	return buf, nil
}

func parseAck(h section.Header, r *bitstream.Reader, data []byte) (*Ack, error) {
	if len(data) < AckSize {
		return nil, errs.ErrMeshTooShort
	}

	return &Ack{
		Station:        h.Station,
		Sequence:       h.Sequence,
		OriginStation:  uint16(r.ReadBits(12)),
		OriginSequence: uint16(r.ReadBits(16)),
	}, nil
}

// RouteError reports a broken uplink so downstream nodes can reselect.
type RouteError struct {
	Station  uint16
	Sequence uint16
	Reason   uint8 // 4-bit reason code
}

func (e *RouteError) Type() Type { return TypeRouteError }

func (e *RouteError) Bytes() ([]byte, error) {
	if e.Station > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}

	buf := make([]byte, RouteErrorSize)
	w := bitstream.NewWriter(buf)
	meshHeader(e.Station, e.Sequence).Pack(w)
	w.WriteBits(uint32(TypeRouteError), 4)
	w.WriteBits(uint32(e.Reason&0x0F), 4)

	return buf, nil
}

func parseRouteError(h section.Header, r *bitstream.Reader, data []byte) (*RouteError, error) {
	if len(data) < RouteErrorSize {
		return nil, errs.ErrMeshTooShort
	}

	return &RouteError{
		Station:  h.Station,
		Sequence: h.Sequence,
		Reason:   uint8(r.ReadBits(4)),
	}, nil
}

// Neighbour is one observed peer in a neighbour report: its station id
// and the quantized RSSI it was last heard at.
type Neighbour struct {
	Station uint16
	RSSI    uint8 // 4-bit quantized code, see PackLinkRSSI
}

// NeighbourReport lists up to 15 directly heard peers for topology
// maintenance.
type NeighbourReport struct {
	Station    uint16
	Sequence   uint16
	Neighbours []Neighbour
}

func (n *NeighbourReport) Type() Type { return TypeNeighbourReport }

func (n *NeighbourReport) Bytes() ([]byte, error) {
	if n.Station > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}
	if len(n.Neighbours) > 15 {
		return nil, errs.ErrMeshTooManyNeighbours
	}

	bits := section.HeaderBits + 8 + 16*len(n.Neighbours)
	buf := make([]byte, (bits+7)/8)
	w := bitstream.NewWriter(buf)
	meshHeader(n.Station, n.Sequence).Pack(w)
	w.WriteBits(uint32(TypeNeighbourReport), 4)
	w.WriteBits(uint32(len(n.Neighbours)), 4)
	for _, nb := range n.Neighbours {
		if nb.Station > section.MaxStation {
			return nil, errs.ErrStationTooHigh
		}
		w.WriteBits(uint32(nb.Station), 12)
		w.WriteBits(uint32(nb.RSSI&0x0F), 4)
	}

	return buf, nil
}

func parseNeighbourReport(h section.Header, r *bitstream.Reader, data []byte) (*NeighbourReport, error) {
	count := int(r.ReadBits(4))
	if r.Remaining() < 16*count {
		return nil, errs.ErrMeshTooShort
	}

	report := &NeighbourReport{Station: h.Station, Sequence: h.Sequence}
	for i := 0; i < count; i++ {
		report.Neighbours = append(report.Neighbours, Neighbour{
			Station: uint16(r.ReadBits(12)),
			RSSI:    uint8(r.ReadBits(4)),
		})
	}

	return report, nil
}

// Echo is the shared shape of PING and PONG: a 12-bit token the
// responder reflects back.
type Echo struct {
	Station  uint16
	Sequence uint16
	Kind     Type // TypePing or TypePong
	Token    uint16
}

func (e *Echo) Type() Type { return e.Kind }

func (e *Echo) Bytes() ([]byte, error) {
	if e.Station > section.MaxStation {
		return nil, errs.ErrStationTooHigh
	}
	if e.Kind != TypePing && e.Kind != TypePong {
		return nil, errs.ErrMeshUnknownType
	}

	buf := make([]byte, EchoSize)
	w := bitstream.NewWriter(buf)
	meshHeader(e.Station, e.Sequence).Pack(w)
	w.WriteBits(uint32(e.Kind), 4)
	w.WriteBits(uint32(e.Token&0x0FFF), 12)

	return buf, nil
}

// Reply builds the PONG answering this PING, echoing the token.
func (e *Echo) Reply(station, sequence uint16) *Echo {
	return &Echo{Station: station, Sequence: sequence, Kind: TypePong, Token: e.Token}
}

func parseEcho(kind Type, h section.Header, r *bitstream.Reader, data []byte) (*Echo, error) {
	if len(data) < EchoSize {
		return nil, errs.ErrMeshTooShort
	}

	return &Echo{
		Station:  h.Station,
		Sequence: h.Sequence,
		Kind:     kind,
		Token:    uint16(r.ReadBits(12)),
	}, nil
}
