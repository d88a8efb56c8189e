// Package errs defines the sentinel errors returned by the sensewire codec.
//
// Every operation in the codec reports failures through one of these values,
// so callers can classify errors with errors.Is without string matching.
// The taxonomy mirrors the protocol layers: encoder context errors, buffer
// errors, decode errors, header validation errors, per-quantity range errors,
// TLV errors and JSON bridge errors.
package errs

import "errors"

// Encoder context errors.
var (
	ErrNilBuffer      = errors.New("buffer is nil")
	ErrNotBegun       = errors.New("encoder not begun")
	ErrAlreadyBegun   = errors.New("encoder already begun")
	ErrAlreadyEnded   = errors.New("encoder already ended")
	ErrDuplicateField = errors.New("field already encoded in this packet")
	ErrKindNotInSlots = errors.New("field kind not in variant layout")
)

// Buffer errors.
var (
	ErrBufferTooSmall = errors.New("buffer too small for encoded packet")
	ErrBufferOverflow = errors.New("bit cursor exceeds buffer capacity")
)

// Decode errors.
var (
	ErrDecodeTooShort  = errors.New("packet shorter than header and presence byte")
	ErrDecodeTruncated = errors.New("packet truncated inside a present field")
	ErrUnknownVariant  = errors.New("no layout registered for variant")
)

// Header validation errors.
var (
	ErrReservedVariant = errors.New("variant 15 is reserved for the mesh layer")
	ErrVariantTooHigh  = errors.New("variant exceeds 4-bit range")
	ErrStationTooHigh  = errors.New("station id exceeds 12-bit range")
)

// Per-quantity range errors. Encode-side setters fail with one of these
// before any state is mutated; decode-side getters never range-fail.
var (
	ErrBatteryLevelLow    = errors.New("battery level below 0%")
	ErrBatteryLevelHigh   = errors.New("battery level above 100%")
	ErrRSSILow            = errors.New("rssi below -120 dBm")
	ErrRSSIHigh           = errors.New("rssi above -60 dBm")
	ErrSNRLow             = errors.New("snr below -20 dB")
	ErrSNRHigh            = errors.New("snr above +10 dB")
	ErrTemperatureLow     = errors.New("temperature below -40 C")
	ErrTemperatureHigh    = errors.New("temperature above +80 C")
	ErrPressureLow        = errors.New("pressure below 850 hPa")
	ErrPressureHigh       = errors.New("pressure above 1105 hPa")
	ErrHumidityLow        = errors.New("humidity below 0%")
	ErrHumidityHigh       = errors.New("humidity above 100%")
	ErrWindSpeedLow       = errors.New("wind speed below 0 m/s")
	ErrWindSpeedHigh      = errors.New("wind speed above 63.5 m/s")
	ErrWindDirectionLow   = errors.New("wind direction below 0 degrees")
	ErrWindDirectionHigh  = errors.New("wind direction above 359 degrees")
	ErrRainRateLow        = errors.New("rain rate below 0 mm/hr")
	ErrRainRateHigh       = errors.New("rain rate above 255 mm/hr")
	ErrRainSizeLow        = errors.New("rain size below 0 mm/day")
	ErrRainSizeHigh       = errors.New("rain size above 6.0 mm/day")
	ErrIrradianceLow      = errors.New("solar irradiance below 0 W/m2")
	ErrIrradianceHigh     = errors.New("solar irradiance above 1023 W/m2")
	ErrUVIndexLow         = errors.New("uv index below 0")
	ErrUVIndexHigh        = errors.New("uv index above 15")
	ErrCloudsLow          = errors.New("cloud cover below 0 okta")
	ErrCloudsHigh         = errors.New("cloud cover above 8 okta")
	ErrAirQualityLow      = errors.New("air quality index below 0")
	ErrAirQualityHigh     = errors.New("air quality index above 500")
	ErrRadiationCPMLow    = errors.New("radiation cpm below 0")
	ErrRadiationCPMHigh   = errors.New("radiation cpm above 16383")
	ErrRadiationDoseLow   = errors.New("radiation dose below 0 uSv/h")
	ErrRadiationDoseHigh  = errors.New("radiation dose above 163.83 uSv/h")
	ErrDepthLow           = errors.New("depth below 0 cm")
	ErrDepthHigh          = errors.New("depth above 1023 cm")
	ErrLatitudeLow        = errors.New("latitude below -90 degrees")
	ErrLatitudeHigh       = errors.New("latitude above +90 degrees")
	ErrLongitudeLow       = errors.New("longitude below -180 degrees")
	ErrLongitudeHigh      = errors.New("longitude above +180 degrees")
	ErrDatetimeLow        = errors.New("datetime below 0 seconds")
	ErrDatetimeHigh       = errors.New("datetime above 24-bit 5-second range")
)

// TLV errors.
var (
	ErrTLVTypeTooHigh       = errors.New("tlv type exceeds 6-bit range")
	ErrTLVDataNil           = errors.New("tlv payload is nil")
	ErrTLVTooLong           = errors.New("tlv payload exceeds 255 units")
	ErrTLVTableFull         = errors.New("tlv table full, at most 8 records per packet")
	ErrTLVInvalidCharacter  = errors.New("character outside six-bit alphabet")
	ErrTLVKeyValueMismatch  = errors.New("key and value counts differ")
)

// Mesh errors.
var (
	ErrMeshNotMesh           = errors.New("packet variant is not the reserved mesh value")
	ErrMeshUnknownType       = errors.New("unknown mesh control type")
	ErrMeshTooShort          = errors.New("mesh packet shorter than its fixed layout")
	ErrMeshInnerTooShort     = errors.New("forwarded payload shorter than a sensor header")
	ErrMeshTooManyNeighbours = errors.New("neighbour report exceeds 15 entries")
	ErrTTLExpired            = errors.New("forward ttl expired")
)

// JSON bridge errors.
var (
	ErrJSONParse        = errors.New("json document parse failed")
	ErrJSONMissingField = errors.New("json document missing required field")
	ErrJSONBadValue     = errors.New("json field has unusable value")
)

// Variant catalog errors.
var (
	ErrVariantSlotCount  = errors.New("variant layout exceeds presence slot capacity")
	ErrVariantDupKind    = errors.New("field kind appears twice in variant layout")
	ErrVariantRegistered = errors.New("variant code already registered")
)

// Archive errors.
var (
	ErrArchiveBadMagic    = errors.New("archive record magic mismatch")
	ErrArchiveChecksum    = errors.New("archive record checksum mismatch")
	ErrArchiveRecordShort = errors.New("archive record shorter than its header")
	ErrArchivePacketSize  = errors.New("archived packet exceeds 16-bit length")
)
