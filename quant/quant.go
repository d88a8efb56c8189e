// Package quant implements the quantization rules of the sensewire wire
// format: pure, stateless mappings between physical measurements and the
// fixed-width integer codes that travel in the bitstream.
//
// Pack functions validate their input against the field's declared range
// and fail with the field-specific errs sentinel before producing a code.
// Unpack functions never fail: every bit pattern of the declared width is
// a valid (if meaningless) code.
package quant

import (
	"math"

	"github.com/nimbuslab/sensewire/errs"
)

// Authoritative field widths, exported for the framing and dump layers.
const (
	BatteryLevelBits  = 5
	ChargingBits      = 1
	RSSIBits          = 4
	SNRBits           = 2
	TemperatureBits   = 9
	PressureBits      = 8
	HumidityBits      = 7
	WindSpeedBits     = 7
	WindDirectionBits = 8
	RainRateBits      = 8
	RainSizeBits      = 4
	IrradianceBits    = 10
	UVIndexBits       = 4
	CloudsBits        = 4
	AirQualityBits    = 9
	RadiationCPMBits  = 14
	RadiationDoseBits = 14
	DepthBits         = 10
	LatitudeBits      = 24
	LongitudeBits     = 24
	DatetimeBits      = 24
	FlagsBits         = 8
)

const (
	positionScale = 1<<24 - 1 // full-scale code for latitude/longitude

	// DatetimeMax is the largest encodable device time in seconds.
	DatetimeMax = uint32(1<<24-1) * 5
)

// PackBatteryLevel maps a battery percentage (0-100) to a 5-bit code.
func PackBatteryLevel(pct int) (uint32, error) {
	if pct < 0 {
		return 0, errs.ErrBatteryLevelLow
	}
	if pct > 100 {
		return 0, errs.ErrBatteryLevelHigh
	}

	return uint32(math.Round(float64(pct) * 31 / 100)), nil
}

// UnpackBatteryLevel maps a 5-bit code back to a percentage.
func UnpackBatteryLevel(code uint32) int {
	return int(math.Round(float64(code) * 100 / 31))
}

// PackRSSI maps a link RSSI in dBm (-120..-60) to a 4-bit code in 4 dBm steps.
func PackRSSI(dbm int) (uint32, error) {
	if dbm < -120 {
		return 0, errs.ErrRSSILow
	}
	if dbm > -60 {
		return 0, errs.ErrRSSIHigh
	}

	return uint32(math.Round(float64(dbm+120) / 4)), nil
}

// UnpackRSSI maps a 4-bit code back to dBm.
func UnpackRSSI(code uint32) int {
	return -120 + int(code)*4
}

// PackSNR maps a link SNR in dB (-20..+10) to a 2-bit code in 10 dB steps.
func PackSNR(db int) (uint32, error) {
	if db < -20 {
		return 0, errs.ErrSNRLow
	}
	if db > 10 {
		return 0, errs.ErrSNRHigh
	}

	return uint32(math.Round(float64(db+20) / 10)), nil
}

// UnpackSNR maps a 2-bit code back to dB.
func UnpackSNR(code uint32) int {
	return -20 + int(code)*10
}

// PackTemperature maps degrees Celsius (-40..+80) to a 9-bit code in
// 0.25 degree steps.
func PackTemperature(c float64) (uint32, error) {
	if c < -40 {
		return 0, errs.ErrTemperatureLow
	}
	if c > 80 {
		return 0, errs.ErrTemperatureHigh
	}

	return uint32(math.Round((c + 40) * 4)), nil
}

// UnpackTemperature maps a 9-bit code back to degrees Celsius.
func UnpackTemperature(code uint32) float64 {
	return float64(code)/4 - 40
}

// PackPressure maps hPa (850..1105) to an 8-bit offset code.
func PackPressure(hpa int) (uint32, error) {
	if hpa < 850 {
		return 0, errs.ErrPressureLow
	}
	if hpa > 1105 {
		return 0, errs.ErrPressureHigh
	}

	return uint32(hpa - 850), nil
}

// UnpackPressure maps an 8-bit code back to hPa.
func UnpackPressure(code uint32) int {
	return 850 + int(code)
}

// PackHumidity maps relative humidity percent (0..100) to a 7-bit code.
func PackHumidity(pct int) (uint32, error) {
	if pct < 0 {
		return 0, errs.ErrHumidityLow
	}
	if pct > 100 {
		return 0, errs.ErrHumidityHigh
	}

	return uint32(pct), nil
}

// UnpackHumidity maps a 7-bit code back to percent.
func UnpackHumidity(code uint32) int {
	return int(code)
}

// PackWindSpeed maps m/s (0..63.5) to a 7-bit code in 0.5 m/s steps.
// It serves both the sustained speed and the gust field.
func PackWindSpeed(ms float64) (uint32, error) {
	if ms < 0 {
		return 0, errs.ErrWindSpeedLow
	}
	if ms > 63.5 {
		return 0, errs.ErrWindSpeedHigh
	}

	return uint32(math.Round(ms * 2)), nil
}

// UnpackWindSpeed maps a 7-bit code back to m/s.
func UnpackWindSpeed(code uint32) float64 {
	return float64(code) / 2
}

// PackWindDirection maps degrees (0..359) to an 8-bit code in 360/256
// degree steps.
func PackWindDirection(deg int) (uint32, error) {
	if deg < 0 {
		return 0, errs.ErrWindDirectionLow
	}
	if deg > 359 {
		return 0, errs.ErrWindDirectionHigh
	}

	return uint32(math.Round(float64(deg)*256/360)) & 0xFF, nil
}

// UnpackWindDirection maps an 8-bit code back to degrees.
func UnpackWindDirection(code uint32) int {
	return int(math.Round(float64(code) * 360 / 256))
}

// PackRainRate maps mm/hr (0..255) to an 8-bit code.
func PackRainRate(mm int) (uint32, error) {
	if mm < 0 {
		return 0, errs.ErrRainRateLow
	}
	if mm > 255 {
		return 0, errs.ErrRainRateHigh
	}

	return uint32(mm), nil
}

// UnpackRainRate maps an 8-bit code back to mm/hr.
func UnpackRainRate(code uint32) int {
	return int(code)
}

// PackRainSize maps drop size in mm/day (0..6.0) to a 4-bit code.
// The wire unit is tenths of a millimetre in steps of four.
func PackRainSize(mm float64) (uint32, error) {
	if mm < 0 {
		return 0, errs.ErrRainSizeLow
	}
	if mm > 6.0 {
		return 0, errs.ErrRainSizeHigh
	}

	units := math.Round(mm * 10)

	return uint32(math.Round(units / 4)), nil
}

// UnpackRainSize maps a 4-bit code back to mm/day.
func UnpackRainSize(code uint32) float64 {
	return float64(code) * 0.4
}

// PackIrradiance maps W/m2 (0..1023) to a 10-bit code.
func PackIrradiance(w int) (uint32, error) {
	if w < 0 {
		return 0, errs.ErrIrradianceLow
	}
	if w > 1023 {
		return 0, errs.ErrIrradianceHigh
	}

	return uint32(w), nil
}

// UnpackIrradiance maps a 10-bit code back to W/m2.
func UnpackIrradiance(code uint32) int {
	return int(code)
}

// PackUVIndex maps a UV index (0..15) to a 4-bit code.
func PackUVIndex(idx int) (uint32, error) {
	if idx < 0 {
		return 0, errs.ErrUVIndexLow
	}
	if idx > 15 {
		return 0, errs.ErrUVIndexHigh
	}

	return uint32(idx), nil
}

// UnpackUVIndex maps a 4-bit code back to a UV index.
func UnpackUVIndex(code uint32) int {
	return int(code)
}

// PackClouds maps cloud cover in okta (0..8) to a 4-bit code.
func PackClouds(okta int) (uint32, error) {
	if okta < 0 {
		return 0, errs.ErrCloudsLow
	}
	if okta > 8 {
		return 0, errs.ErrCloudsHigh
	}

	return uint32(okta), nil
}

// UnpackClouds maps a 4-bit code back to okta.
func UnpackClouds(code uint32) int {
	return int(code)
}

// PackAirQuality maps an AQI value (0..500) to a 9-bit code.
func PackAirQuality(aqi int) (uint32, error) {
	if aqi < 0 {
		return 0, errs.ErrAirQualityLow
	}
	if aqi > 500 {
		return 0, errs.ErrAirQualityHigh
	}

	return uint32(aqi), nil
}

// UnpackAirQuality maps a 9-bit code back to an AQI value.
func UnpackAirQuality(code uint32) int {
	return int(code)
}

// PackRadiationCPM maps counts per minute (0..16383) to a 14-bit code.
func PackRadiationCPM(cpm int) (uint32, error) {
	if cpm < 0 {
		return 0, errs.ErrRadiationCPMLow
	}
	if cpm > 16383 {
		return 0, errs.ErrRadiationCPMHigh
	}

	return uint32(cpm), nil
}

// UnpackRadiationCPM maps a 14-bit code back to counts per minute.
func UnpackRadiationCPM(code uint32) int {
	return int(code)
}

// PackRadiationDose maps a dose rate in uSv/h (0..163.83) to a 14-bit
// code in 0.01 uSv/h steps.
func PackRadiationDose(usv float64) (uint32, error) {
	if usv < 0 {
		return 0, errs.ErrRadiationDoseLow
	}
	if usv > 163.83 {
		return 0, errs.ErrRadiationDoseHigh
	}

	return uint32(math.Round(usv * 100)), nil
}

// UnpackRadiationDose maps a 14-bit code back to uSv/h.
func UnpackRadiationDose(code uint32) float64 {
	return float64(code) / 100
}

// PackDepth maps a water depth in cm (0..1023) to a 10-bit code.
func PackDepth(cm int) (uint32, error) {
	if cm < 0 {
		return 0, errs.ErrDepthLow
	}
	if cm > 1023 {
		return 0, errs.ErrDepthHigh
	}

	return uint32(cm), nil
}

// UnpackDepth maps a 10-bit code back to cm.
func UnpackDepth(code uint32) int {
	return int(code)
}

// PackLatitude maps degrees (-90..+90) to a full-scale 24-bit code.
func PackLatitude(deg float64) (uint32, error) {
	if deg < -90 {
		return 0, errs.ErrLatitudeLow
	}
	if deg > 90 {
		return 0, errs.ErrLatitudeHigh
	}

	return uint32(math.Round((deg + 90) / 180 * positionScale)), nil
}

// UnpackLatitude maps a 24-bit code back to degrees.
func UnpackLatitude(code uint32) float64 {
	return float64(code)/positionScale*180 - 90
}

// PackLongitude maps degrees (-180..+180) to a full-scale 24-bit code.
func PackLongitude(deg float64) (uint32, error) {
	if deg < -180 {
		return 0, errs.ErrLongitudeLow
	}
	if deg > 180 {
		return 0, errs.ErrLongitudeHigh
	}

	return uint32(math.Round((deg + 180) / 360 * positionScale)), nil
}

// UnpackLongitude maps a 24-bit code back to degrees.
func UnpackLongitude(code uint32) float64 {
	return float64(code)/positionScale*360 - 180
}

// PackDatetime maps a device time in seconds to a 24-bit code of
// 5-second ticks.
func PackDatetime(sec uint32) (uint32, error) {
	if sec > DatetimeMax {
		return 0, errs.ErrDatetimeHigh
	}

	return (sec + 2) / 5, nil
}

// UnpackDatetime maps a 24-bit tick code back to seconds.
func UnpackDatetime(code uint32) uint32 {
	return code * 5
}
