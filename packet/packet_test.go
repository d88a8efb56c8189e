package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/section"
	"github.com/nimbuslab/sensewire/tlv"
	"github.com/nimbuslab/sensewire/variant"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 2049, 48879))
	require.NoError(t, enc.SetBattery(75, true))
	require.NoError(t, enc.SetEnvironment(21.5, 1013, 64))
	require.NoError(t, enc.SetWind(4.5, 9.0, 270))
	require.NoError(t, enc.SetLink(-96, 0))
	require.NoError(t, enc.SetFlags(0b1010_0001))

	n, err := enc.End()
	require.NoError(t, err)
	require.Greater(t, n, section.MinPacketSize)

	p, err := Decode(buf[:n])
	require.NoError(t, err)

	require.Equal(t, uint8(variant.CodeStandard), p.Header.Variant)
	require.Equal(t, uint16(2049), p.Header.Station)
	require.Equal(t, uint16(48879), p.Header.Sequence)

	require.True(t, p.Has(format.KindBattery))
	require.Equal(t, 74, p.Values.BatteryLevel) // 75% rounds through the 5-bit code
	require.True(t, p.Values.Charging)

	require.True(t, p.Has(format.KindEnvironment))
	require.InDelta(t, 21.5, p.Values.Temperature, 0.125)
	require.Equal(t, 1013, p.Values.Pressure)
	require.Equal(t, 64, p.Values.Humidity)

	require.True(t, p.Has(format.KindWind))
	require.InDelta(t, 4.5, p.Values.WindSpeed, 0.25)
	require.InDelta(t, 9.0, p.Values.WindGust, 0.25)
	require.InDelta(t, 270, p.Values.WindDirection, 1)

	require.True(t, p.Has(format.KindLink))
	require.Equal(t, -96, p.Values.RSSI)
	require.Equal(t, 0, p.Values.SNR)

	require.True(t, p.Has(format.KindFlags))
	require.Equal(t, uint8(0b1010_0001), p.Values.Flags)

	require.False(t, p.Has(format.KindRain))
	require.False(t, p.Has(format.KindSolar))
	require.False(t, p.HasTLV)
}

func TestPresenceFidelity(t *testing.T) {
	// Every subset of set fields must decode to exactly that subset.
	buf := make([]byte, 64)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetClouds(3))
	require.NoError(t, enc.SetDatetime(100))

	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.True(t, p.Has(format.KindClouds))
	require.True(t, p.Has(format.KindDatetime))
	require.Equal(t, 2, p.Present.Len())
	require.Equal(t, 3, p.Values.Clouds)
	require.Equal(t, uint32(100), p.Values.Datetime)
}

func TestEmptyPacket(t *testing.T) {
	buf := make([]byte, 8)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 7, 9))
	n, err := enc.End()
	require.NoError(t, err)
	require.Equal(t, section.MinPacketSize, n)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, 0, p.Present.Len())
	require.False(t, p.HasTLV)
	require.Empty(t, p.Records)
}

func TestEncoderStateMachine(t *testing.T) {
	buf := make([]byte, 32)
	enc := NewEncoder()

	t.Run("Set before Begin", func(t *testing.T) {
		require.ErrorIs(t, enc.SetClouds(1), errs.ErrNotBegun)
		_, err := enc.End()
		require.ErrorIs(t, err, errs.ErrNotBegun)
	})

	t.Run("Set and End after End", func(t *testing.T) {
		require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
		_, err := enc.End()
		require.NoError(t, err)

		require.ErrorIs(t, enc.SetClouds(1), errs.ErrAlreadyEnded)
		_, err = enc.End()
		require.ErrorIs(t, err, errs.ErrAlreadyEnded)
	})

	t.Run("Begin restarts from any state", func(t *testing.T) {
		require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 2))
		require.NoError(t, enc.SetClouds(1))
		require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 3))

		n, err := enc.End()
		require.NoError(t, err)

		p, err := Decode(buf[:n])
		require.NoError(t, err)
		require.Equal(t, 0, p.Present.Len(), "restart discards staged fields")
		require.Equal(t, uint16(3), p.Header.Sequence)
	})
}

func TestBeginValidation(t *testing.T) {
	enc := NewEncoder()
	buf := make([]byte, 32)

	require.ErrorIs(t, enc.Begin(nil, variant.CodeStandard, 1, 1), errs.ErrNilBuffer)
	require.ErrorIs(t, enc.Begin(buf, section.ReservedVariant, 1, 1), errs.ErrReservedVariant)
	require.ErrorIs(t, enc.Begin(buf, 9, 1, 1), errs.ErrUnknownVariant)
	require.ErrorIs(t, enc.Begin(buf, variant.CodeStandard, 5000, 1), errs.ErrStationTooHigh)
}

func TestDuplicateFieldRejected(t *testing.T) {
	buf := make([]byte, 32)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetBattery(50, false))
	require.ErrorIs(t, enc.SetBattery(60, false), errs.ErrDuplicateField)

	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Equal(t, 50, p.Values.BatteryLevel, "first staged value wins")
}

func TestKindNotInLayout(t *testing.T) {
	buf := make([]byte, 32)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.ErrorIs(t, enc.SetDepth(100), errs.ErrKindNotInSlots)
	require.ErrorIs(t, enc.SetLocation(10, 20), errs.ErrKindNotInSlots)
}

func TestSetValidationIsFieldLocal(t *testing.T) {
	buf := make([]byte, 32)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.ErrorIs(t, enc.SetEnvironment(99.5, 1013, 50), errs.ErrTemperatureHigh)
	require.ErrorIs(t, enc.SetEnvironment(20, 700, 50), errs.ErrPressureLow)

	// The failed Set left no presence behind.
	require.NoError(t, enc.SetEnvironment(20, 1013, 50))
}

func TestBufferTooSmall(t *testing.T) {
	buf := make([]byte, 6)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetEnvironment(20, 1013, 50))
	require.NoError(t, enc.SetWind(1, 2, 90))

	_, err := enc.End()
	require.ErrorIs(t, err, errs.ErrBufferTooSmall)

	// Nothing was written and the encoder stayed usable.
	require.Equal(t, make([]byte, 6), buf)

	big := make([]byte, 64)
	require.NoError(t, enc.Begin(big, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetEnvironment(20, 1013, 50))
	_, err = enc.End()
	require.NoError(t, err)
}

func TestTLVInPacket(t *testing.T) {
	buf := make([]byte, 64)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 12, 34))
	require.NoError(t, enc.SetBattery(90, false))

	diag, err := tlv.Diagnostic("boot ok")
	require.NoError(t, err)
	require.NoError(t, enc.AddTLV(diag))

	user, err := tlv.UserData([]byte{0xDE, 0xAD})
	require.NoError(t, err)
	require.NoError(t, enc.AddTLV(user))

	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.True(t, p.HasTLV)
	require.Len(t, p.Records, 2)
	require.Equal(t, "boot ok", p.Records[0].Text)
	require.Equal(t, []byte{0xDE, 0xAD}, p.Records[1].Data)
}

func TestTLVTableFull(t *testing.T) {
	buf := make([]byte, 256)
	enc := NewEncoder()
	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))

	rec, err := tlv.UserData([]byte{1})
	require.NoError(t, err)
	for i := 0; i < tlv.MaxRecords; i++ {
		require.NoError(t, enc.AddTLV(rec))
	}
	require.ErrorIs(t, enc.AddTLV(rec), errs.ErrTLVTableFull)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("Too short", func(t *testing.T) {
		_, err := Decode([]byte{0x00, 0x01, 0x02, 0x03})
		require.ErrorIs(t, err, errs.ErrDecodeTooShort)
	})

	t.Run("Reserved variant", func(t *testing.T) {
		_, err := Decode([]byte{0xF0, 0x01, 0x00, 0x01, 0x00})
		require.ErrorIs(t, err, errs.ErrReservedVariant)
	})

	t.Run("Unknown variant", func(t *testing.T) {
		_, err := Decode([]byte{0x90, 0x01, 0x00, 0x01, 0x00})
		require.ErrorIs(t, err, errs.ErrUnknownVariant)
	})

	t.Run("Truncated field", func(t *testing.T) {
		buf := make([]byte, 64)
		enc := NewEncoder()
		require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
		require.NoError(t, enc.SetEnvironment(20, 1013, 50))
		n, err := enc.End()
		require.NoError(t, err)

		_, err = Decode(buf[:n-1])
		require.ErrorIs(t, err, errs.ErrDecodeTruncated)
	})
}

func TestSpans(t *testing.T) {
	buf := make([]byte, 64)
	enc := NewEncoder()

	require.NoError(t, enc.Begin(buf, variant.CodeStandard, 1, 1))
	require.NoError(t, enc.SetBattery(100, true))
	require.NoError(t, enc.SetClouds(8))

	n, err := enc.End()
	require.NoError(t, err)

	p, err := Decode(buf[:n])
	require.NoError(t, err)
	require.Len(t, p.Spans, 2)

	require.Equal(t, format.KindBattery, p.Spans[0].Kind)
	require.Equal(t, 48, p.Spans[0].Offset, "first field follows header and two presence bytes")
	require.Equal(t, 6, p.Spans[0].Bits)
	require.Equal(t, uint64(0b11111_1), p.Spans[0].Raw)

	require.Equal(t, format.KindClouds, p.Spans[1].Kind)
	require.Equal(t, 54, p.Spans[1].Offset)
	require.Equal(t, uint64(8), p.Spans[1].Raw)

	require.NotEmpty(t, p.Dump())
	require.NotEmpty(t, p.String())
}

func TestCustomCatalog(t *testing.T) {
	def, err := variant.NewDefinition("depth_only", []variant.Slot{{Kind: format.KindDepth}})
	require.NoError(t, err)

	catalog := variant.NewCatalog()
	require.NoError(t, catalog.Register(6, def))

	buf := make([]byte, 32)
	enc := NewEncoderWithCatalog(catalog)
	require.NoError(t, enc.Begin(buf, 6, 1, 1))
	require.NoError(t, enc.SetDepth(512))

	n, err := enc.End()
	require.NoError(t, err)

	p, err := DecodeWithCatalog(buf[:n], catalog)
	require.NoError(t, err)
	require.Equal(t, 512, p.Values.Depth)
}
