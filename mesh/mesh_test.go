package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/section"
)

func TestBeaconRoundTrip(t *testing.T) {
	beacon := &Beacon{
		Station:    100,
		Sequence:   7,
		Gateway:    1,
		HopCost:    2,
		Flags:      0x5,
		Generation: 4095,
	}

	buf, err := beacon.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, BeaconSize)
	require.Equal(t, byte(0xF0|100>>8), buf[0], "reserved variant in the header nibble")

	msg, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, beacon, msg)
}

func TestForwardRoundTrip(t *testing.T) {
	inner := append(section.Header{Variant: 0, Station: 9, Sequence: 3}.Bytes(), 0x00)

	fwd := &Forward{Station: 200, Sequence: 55, TTL: 0xAB, Inner: inner}
	buf, err := fwd.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, ForwardMinSize+len(inner))
	require.Equal(t, inner, buf[ForwardMinSize:], "embedded packet travels verbatim")

	msg, err := Decode(buf)
	require.NoError(t, err)
	got, ok := msg.(*Forward)
	require.True(t, ok)
	require.Equal(t, uint8(0xAB), got.TTL, "ttl reassembled from its two nibbles")

	station, sequence, err := got.Origin()
	require.NoError(t, err)
	require.Equal(t, uint16(9), station, "origin comes from the inner header")
	require.Equal(t, uint16(3), sequence)
	require.Equal(t, uint16(200), got.Station, "outer relay identity is separate")
}

func TestAckRoundTrip(t *testing.T) {
	ack := &Ack{Station: 5, Sequence: 6, OriginStation: 9, OriginSequence: 3}
	buf, err := ack.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, AckSize)

	msg, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, ack, msg)
}

func TestRouteErrorRoundTrip(t *testing.T) {
	re := &RouteError{Station: 8, Sequence: 1, Reason: ReasonOverloaded}
	buf, err := re.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, RouteErrorSize)

	msg, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, re, msg)
}

func TestNeighbourReportRoundTrip(t *testing.T) {
	report := &NeighbourReport{
		Station:  3,
		Sequence: 2,
		Neighbours: []Neighbour{
			{Station: 10, RSSI: 4},
			{Station: 4095, RSSI: 15},
		},
	}

	buf, err := report.Bytes()
	require.NoError(t, err)

	msg, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, report, msg)

	report.Neighbours = make([]Neighbour, 16)
	_, err = report.Bytes()
	require.ErrorIs(t, err, errs.ErrMeshTooManyNeighbours)
}

func TestPingPong(t *testing.T) {
	ping := &Echo{Station: 1, Sequence: 1, Kind: TypePing, Token: 0xABC}
	buf, err := ping.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, EchoSize)

	msg, err := Decode(buf)
	require.NoError(t, err)
	got, ok := msg.(*Echo)
	require.True(t, ok)
	require.Equal(t, TypePing, got.Type())
	require.Equal(t, uint16(0xABC), got.Token)

	pong := got.Reply(2, 9)
	require.Equal(t, TypePong, pong.Kind)
	require.Equal(t, uint16(0xABC), pong.Token)
}

func TestDecodeRejections(t *testing.T) {
	t.Run("Too short", func(t *testing.T) {
		_, err := Decode([]byte{0xF0, 0x00, 0x00, 0x01})
		require.ErrorIs(t, err, errs.ErrMeshTooShort)
	})

	t.Run("Sensor variant routed away", func(t *testing.T) {
		_, err := Decode([]byte{0x00, 0x01, 0x00, 0x01, 0x00})
		require.ErrorIs(t, err, errs.ErrMeshNotMesh)
	})

	t.Run("Unknown control type", func(t *testing.T) {
		_, err := Decode([]byte{0xF0, 0x01, 0x00, 0x01, 0xE0})
		require.ErrorIs(t, err, errs.ErrMeshUnknownType)
	})

	t.Run("Forward without inner packet", func(t *testing.T) {
		_, err := Decode([]byte{0xF0, 0x01, 0x00, 0x01, 0x27, 0x00})
		require.ErrorIs(t, err, errs.ErrMeshInnerTooShort)
	})
}

func TestDedupRing(t *testing.T) {
	t.Run("Idempotence", func(t *testing.T) {
		ring := NewDedupRing(4)
		require.True(t, ring.CheckAndAdd(1, 1))
		require.False(t, ring.CheckAndAdd(1, 1))
		require.True(t, ring.CheckAndAdd(1, 2))
		require.False(t, ring.CheckAndAdd(1, 2))
		require.False(t, ring.CheckAndAdd(1, 1))
		require.Equal(t, 2, ring.Len())
	})

	t.Run("Oldest evicted first", func(t *testing.T) {
		ring := NewDedupRing(4)
		for seq := uint16(1); seq <= 4; seq++ {
			require.True(t, ring.CheckAndAdd(1, seq))
		}
		require.False(t, ring.CheckAndAdd(1, 1))

		// A fifth distinct pair evicts (1,1).
		require.True(t, ring.CheckAndAdd(1, 5))
		require.True(t, ring.CheckAndAdd(1, 1))
		require.False(t, ring.CheckAndAdd(1, 3))
	})

	t.Run("Reset", func(t *testing.T) {
		ring := NewDedupRing(0)
		require.True(t, ring.CheckAndAdd(1, 1))
		ring.Reset()
		require.True(t, ring.CheckAndAdd(1, 1))
	})
}

func TestGenerationNewer(t *testing.T) {
	require.True(t, GenerationNewer(2, 1))
	require.False(t, GenerationNewer(1, 2))
	require.False(t, GenerationNewer(5, 5))

	// Wraparound: 1 is newer than 4095, never the reverse.
	require.True(t, GenerationNewer(1, 4095))
	require.False(t, GenerationNewer(4095, 1))

	require.Equal(t, uint16(0), NextGeneration(4095))
}

func TestLinkRSSIQuantizer(t *testing.T) {
	for dbm := -120; dbm <= -45; dbm += 5 {
		code, err := PackLinkRSSI(dbm)
		require.NoError(t, err)
		require.Equal(t, dbm, UnpackLinkRSSI(code))
	}

	_, err := PackLinkRSSI(-121)
	require.ErrorIs(t, err, errs.ErrRSSILow)
	_, err = PackLinkRSSI(-40)
	require.ErrorIs(t, err, errs.ErrRSSIHigh)
}
