package sensewire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/mesh"
	"github.com/nimbuslab/sensewire/variant"
)

// A full weather report decodes back within each field's quantization
// step.
func TestWeatherReportRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 42, 7))
	require.NoError(t, enc.SetBattery(75, true))
	require.NoError(t, enc.SetEnvironment(22.5, 1013, 65))

	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, uint16(42), p.Header.Station)
	require.Equal(t, uint16(7), p.Header.Sequence)
	require.InDelta(t, 75, p.Values.BatteryLevel, 4, "5-bit battery code")
	require.True(t, p.Values.Charging)
	require.InDelta(t, 22.5, p.Values.Temperature, 0.25)
	require.Equal(t, 1013, p.Values.Pressure)
	require.Equal(t, 65, p.Values.Humidity)
}

// A lone flags field in presence byte 1 forces the extension bit in
// presence byte 0, and nothing else leaks into the bitmap.
func TestFlagsOnlyPacket(t *testing.T) {
	buf := make([]byte, 16)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetFlags(0x42))

	n, err := enc.End()
	require.NoError(t, err)

	require.NotZero(t, buf[4]&0x80, "presence byte 0 extension bit")

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, 1, p.Present.Len())
	require.True(t, p.Has(format.KindFlags))
	require.Equal(t, uint8(0x42), p.Values.Flags)
}

// A forwarded packet's origin comes from its own embedded header, not
// from the relaying sender's.
func TestForwardedPacketOrigin(t *testing.T) {
	inner := make([]byte, 32)
	enc := NewEncoder()
	require.NoError(t, enc.Begin(inner, variant.CodeStandard, 9, 3))
	require.NoError(t, enc.SetBattery(60, false))
	n, err := enc.End()
	require.NoError(t, err)

	fwd := &mesh.Forward{Station: 777, Sequence: 999, TTL: 4, Inner: inner[:n]}
	wire, err := fwd.Bytes()
	require.NoError(t, err)

	msg, err := mesh.Decode(wire)
	require.NoError(t, err)
	got, ok := msg.(*mesh.Forward)
	require.True(t, ok)

	station, sequence, err := got.Origin()
	require.NoError(t, err)
	require.Equal(t, uint16(9), station)
	require.Equal(t, uint16(3), sequence)

	p, err := Decode(got.Inner)
	require.NoError(t, err)
	require.InDelta(t, 60, p.Values.BatteryLevel, 4)
}

func TestRegisterVariant(t *testing.T) {
	def, err := variant.NewDefinition("buoy", []variant.Slot{
		{Kind: format.KindBattery},
		{Kind: format.KindDepth},
		{Kind: format.KindLocation},
	})
	require.NoError(t, err)
	require.NoError(t, RegisterVariant(14, def))

	buf := make([]byte, 32)
	enc := NewEncoder()
	require.NoError(t, enc.Begin(buf, 14, 3, 1))
	require.NoError(t, enc.SetDepth(250))
	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, "buoy", p.Layout.Name)
	require.Equal(t, 250, p.Values.Depth)
}
