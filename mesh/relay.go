package mesh

import (
	"github.com/rs/zerolog"

	"github.com/nimbuslab/sensewire/errs"
)

// gatewayState is the freshest known view of one gateway, assembled
// from received beacons.
type gatewayState struct {
	hopCost    uint8
	generation uint16
	via        uint16 // station the winning beacon arrived from
}

// Relay is a single-node mesh participant: it filters duplicate
// traffic, tracks gateways from beacons, re-wraps FORWARD packets with
// a decremented TTL and answers pings.
//
// Relay owns a DedupRing and is therefore non-reentrant; confine it to
// one receive loop.
type Relay struct {
	station  uint16
	sequence uint16
	dedup    *DedupRing
	gateways map[uint16]gatewayState
	log      zerolog.Logger
}

// NewRelay creates a relay for the given station id.
func NewRelay(station uint16, logger zerolog.Logger) *Relay {
	return &Relay{
		station:  station,
		dedup:    NewDedupRing(DefaultDedupCapacity),
		gateways: make(map[uint16]gatewayState),
		log:      logger.With().Uint16("station", station).Logger(),
	}
}

// Gateways returns the ids of currently known gateways.
func (r *Relay) Gateways() []uint16 {
	ids := make([]uint16, 0, len(r.gateways))
	for id := range r.gateways {
		ids = append(ids, id)
	}

	return ids
}

// Handle processes one received mesh buffer. The returned slice, when
// non-nil, is a packet the caller should transmit: a re-wrapped FORWARD
// or a PONG. Duplicates and log-only control types return (nil, nil).
func (r *Relay) Handle(data []byte) ([]byte, error) {
	msg, err := Decode(data)
	if err != nil {
		r.log.Warn().Err(err).Int("len", len(data)).Msg("undecodable mesh packet")

		return nil, err
	}

	if !r.dedup.CheckAndAdd(senderOf(msg), sequenceOf(msg)) {
		r.log.Debug().
			Stringer("type", msg.Type()).
			Uint16("sender", senderOf(msg)).
			Msg("duplicate suppressed")

		return nil, nil
	}

	switch m := msg.(type) {
	case *Beacon:
		r.handleBeacon(m)

		return nil, nil
	case *Forward:
		return r.handleForward(m)
	case *Ack:
		r.log.Info().
			Uint16("origin_station", m.OriginStation).
			Uint16("origin_sequence", m.OriginSequence).
			Msg("ack observed")

		return nil, nil
	case *RouteError:
		r.log.Warn().
			Uint16("sender", m.Station).
			Uint8("reason", m.Reason).
			Msg("route error")

		return nil, nil
	case *NeighbourReport:
		r.log.Info().
			Uint16("sender", m.Station).
			Int("neighbours", len(m.Neighbours)).
			Msg("neighbour report")

		return nil, nil
	case *Echo:
		if m.Kind == TypePing {
			pong := m.Reply(r.station, r.nextSequence())
			r.log.Debug().Uint16("token", m.Token).Msg("ping answered")

			return pong.Bytes()
		}
		r.log.Debug().Uint16("token", m.Token).Msg("pong observed")

		return nil, nil
	}

	return nil, errs.ErrMeshUnknownType
}

// handleBeacon folds a beacon into the gateway table. A beacon wins
// when its generation is newer, or on equal generation when it offers a
// cheaper path.
func (r *Relay) handleBeacon(b *Beacon) {
	cur, known := r.gateways[b.Gateway]
	if known && !GenerationNewer(b.Generation, cur.generation) {
		if b.Generation != cur.generation || b.HopCost >= cur.hopCost {
			return
		}
	}

	r.gateways[b.Gateway] = gatewayState{
		hopCost:    b.HopCost,
		generation: b.Generation,
		via:        b.Station,
	}
	r.log.Info().
		Uint16("gateway", b.Gateway).
		Uint8("hop_cost", b.HopCost).
		Uint16("generation", b.Generation).
		Uint16("via", b.Station).
		Msg("gateway updated")
}

// handleForward re-wraps the embedded packet with a decremented TTL. A
// packet arriving with TTL 0 has exhausted its hop budget and is
// dropped with ErrTTLExpired.
func (r *Relay) handleForward(f *Forward) ([]byte, error) {
	origin, originSeq, err := f.Origin()
	if err != nil {
		return nil, err
	}

	if !r.dedup.CheckAndAdd(origin, originSeq) {
		r.log.Debug().
			Uint16("origin_station", origin).
			Uint16("origin_sequence", originSeq).
			Msg("forwarded packet already relayed")

		return nil, nil
	}

	if f.TTL == 0 {
		r.log.Warn().
			Uint16("origin_station", origin).
			Uint16("origin_sequence", originSeq).
			Msg("hop budget exhausted")

		return nil, errs.ErrTTLExpired
	}

	next := &Forward{
		Station:  r.station,
		Sequence: r.nextSequence(),
		TTL:      f.TTL - 1,
		Inner:    f.Inner,
	}
	r.log.Info().
		Uint16("origin_station", origin).
		Uint16("origin_sequence", originSeq).
		Uint8("ttl", next.TTL).
		Msg("forwarding")

	return next.Bytes()
}

func (r *Relay) nextSequence() uint16 {
	r.sequence++

	return r.sequence
}

func senderOf(m Message) uint16 {
	switch m := m.(type) {
	case *Beacon:
		return m.Station
	case *Forward:
		return m.Station
	case *Ack:
		return m.Station
	case *RouteError:
		return m.Station
	case *NeighbourReport:
		return m.Station
	case *Echo:
		return m.Station
	}

	return 0
}

func sequenceOf(m Message) uint16 {
	switch m := m.(type) {
	case *Beacon:
		return m.Sequence
	case *Forward:
		return m.Sequence
	case *Ack:
		return m.Sequence
	case *RouteError:
		return m.Sequence
	case *NeighbourReport:
		return m.Sequence
	case *Echo:
		return m.Sequence
	}

	return 0
}
