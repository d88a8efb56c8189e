package jsonio

import (
	"testing"

	"github.com/valyala/fastjson"

	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/packet"
	"github.com/nimbuslab/sensewire/tlv"
	"github.com/nimbuslab/sensewire/variant"
)

func TestDecodeToJSON(t *testing.T) {
	buf := make([]byte, 64)
	enc := packet.NewEncoder()
	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 42, 7))
	require.NoError(t, enc.SetBattery(75, true))
	require.NoError(t, enc.SetEnvironment(22.5, 1013, 65))

	diag, err := tlv.Diagnostic("boot ok")
	require.NoError(t, err)
	require.NoError(t, enc.AddTLV(diag))

	n, err := enc.End()
	require.NoError(t, err)

	doc, err := DecodeToJSON(buf[:n])
	require.NoError(t, err)

	root, err := fastjson.Parse(doc)
	require.NoError(t, err)

	require.Equal(t, 0, root.GetInt("variant"))
	require.Equal(t, 42, root.GetInt("station"))
	require.Equal(t, 7, root.GetInt("sequence"))

	require.InDelta(t, 75, root.GetInt("battery", "level"), 4)
	require.True(t, root.GetBool("battery", "charging"))
	require.InDelta(t, 22.5, root.GetFloat64("environment", "temperature"), 0.25)
	require.Equal(t, 1013, root.GetInt("environment", "pressure"))
	require.Equal(t, 65, root.GetInt("environment", "humidity"))

	require.Nil(t, root.Get("wind"), "absent fields are omitted")

	records := root.GetArray("tlv")
	require.Len(t, records, 1)
	require.Equal(t, "string", string(records[0].GetStringBytes("format")))
	require.Equal(t, "boot ok", string(records[0].GetStringBytes("text")))
}

func TestEncodeFromJSON(t *testing.T) {
	doc := `{
		"variant": 0,
		"station": 42,
		"sequence": 7,
		"battery": {"level": 80, "charging": false},
		"environment": {"temperature": 22.5, "pressure": 1013, "humidity": 65},
		"clouds": 3,
		"flags": 66,
		"tlv": [
			{"type": 4, "format": "string", "text": "boot ok"},
			{"type": 5, "format": "raw", "data": "3q0="}
		]
	}`

	buf := make([]byte, 128)
	n, err := EncodeFromJSON(doc, buf)
	require.NoError(t, err)

	p, err := packet.Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, uint16(42), p.Header.Station)
	require.InDelta(t, 80, p.Values.BatteryLevel, 4)
	require.False(t, p.Values.Charging)
	require.InDelta(t, 22.5, p.Values.Temperature, 0.25)
	require.Equal(t, 3, p.Values.Clouds)
	require.Equal(t, uint8(66), p.Values.Flags)
	require.Len(t, p.Records, 2)
	require.Equal(t, "boot ok", p.Records[0].Text)
	require.Equal(t, []byte{0xDE, 0xAD}, p.Records[1].Data)
}

func TestJSONRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	enc := packet.NewEncoder()
	require.NoError(t, enc.Begin(buf, variant.CodeTracker, 9, 3))
	require.NoError(t, enc.SetBattery(55, false))
	require.NoError(t, enc.SetLocation(48.85837, 2.29448))
	n, err := enc.End()
	require.NoError(t, err)

	doc, err := DecodeToJSON(buf[:n])
	require.NoError(t, err)

	out := make([]byte, 64)
	m, err := EncodeFromJSON(doc, out)
	require.NoError(t, err)

	p, err := packet.Decode(out[:m])
	require.NoError(t, err)
	require.InDelta(t, 48.85837, p.Values.Latitude, 0.0001)
	require.InDelta(t, 2.29448, p.Values.Longitude, 0.0001)
}

func TestEncodeFromJSONErrors(t *testing.T) {
	buf := make([]byte, 64)

	t.Run("Unparseable", func(t *testing.T) {
		_, err := EncodeFromJSON("{not json", buf)
		require.ErrorIs(t, err, errs.ErrJSONParse)
	})

	t.Run("Missing required members", func(t *testing.T) {
		_, err := EncodeFromJSON(`{"station": 1, "sequence": 1}`, buf)
		require.ErrorIs(t, err, errs.ErrJSONMissingField)

		_, err = EncodeFromJSON(`{"variant": 0, "sequence": 1}`, buf)
		require.ErrorIs(t, err, errs.ErrJSONMissingField)
	})

	t.Run("Out-of-range value", func(t *testing.T) {
		doc := `{"variant": 0, "station": 1, "sequence": 1, "clouds": 99}`
		_, err := EncodeFromJSON(doc, buf)
		require.ErrorIs(t, err, errs.ErrCloudsHigh)
	})

	t.Run("Bad tlv member", func(t *testing.T) {
		doc := `{"variant": 0, "station": 1, "sequence": 1, "tlv": [{"type": 1, "format": "nope"}]}`
		_, err := EncodeFromJSON(doc, buf)
		require.ErrorIs(t, err, errs.ErrJSONBadValue)
	})
}
