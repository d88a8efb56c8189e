// Package packet implements the sensor packet codec: a stateful
// single-packet Encoder and a pure Decode function, tied together by the
// variant catalog, the presence framer and the quantization library.
package packet

import (
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/internal/bitstream"
	"github.com/nimbuslab/sensewire/quant"
)

// Values holds the physical-unit values for every field kind. Which
// members are meaningful is governed by a KindSet presence bitmap
// alongside; absent fields keep their zero value.
type Values struct {
	BatteryLevel int // percent
	Charging     bool

	RSSI int // dBm
	SNR  int // dB

	Temperature float64 // degrees Celsius
	Pressure    int     // hPa
	Humidity    int     // percent

	WindSpeed     float64 // m/s
	WindGust      float64 // m/s
	WindDirection int     // degrees

	RainRate int     // mm/hr
	RainSize float64 // mm/day

	Irradiance int // W/m2
	UVIndex    int

	Clouds     int // okta
	AirQuality int // AQI

	RadiationCPM  int
	RadiationDose float64 // uSv/h

	Depth int // cm

	Latitude  float64 // degrees
	Longitude float64 // degrees

	Datetime uint32 // seconds of device time, 5 s resolution

	Flags uint8
}

// packField writes the staged value of one field kind through the bit
// writer. Values were range-checked when staged, so the quantizers
// cannot fail here.
//
// This switch, with unpackField below, is the codec's single dispatch
// point over field kinds.
func packField(w *bitstream.Writer, k format.FieldKind, v *Values) {
	switch k {
	case format.KindBattery:
		code, _ := quant.PackBatteryLevel(v.BatteryLevel)
		w.WriteBits(code, quant.BatteryLevelBits)
		if v.Charging {
			w.WriteBit(1)
		} else {
			w.WriteBit(0)
		}
	case format.KindLink:
		rssi, _ := quant.PackRSSI(v.RSSI)
		snr, _ := quant.PackSNR(v.SNR)
		w.WriteBits(rssi, quant.RSSIBits)
		w.WriteBits(snr, quant.SNRBits)
	case format.KindEnvironment:
		temp, _ := quant.PackTemperature(v.Temperature)
		pres, _ := quant.PackPressure(v.Pressure)
		hum, _ := quant.PackHumidity(v.Humidity)
		w.WriteBits(temp, quant.TemperatureBits)
		w.WriteBits(pres, quant.PressureBits)
		w.WriteBits(hum, quant.HumidityBits)
	case format.KindWind:
		speed, _ := quant.PackWindSpeed(v.WindSpeed)
		gust, _ := quant.PackWindSpeed(v.WindGust)
		dir, _ := quant.PackWindDirection(v.WindDirection)
		w.WriteBits(speed, quant.WindSpeedBits)
		w.WriteBits(gust, quant.WindSpeedBits)
		w.WriteBits(dir, quant.WindDirectionBits)
	case format.KindRain:
		rate, _ := quant.PackRainRate(v.RainRate)
		size, _ := quant.PackRainSize(v.RainSize)
		w.WriteBits(rate, quant.RainRateBits)
		w.WriteBits(size, quant.RainSizeBits)
	case format.KindSolar:
		irr, _ := quant.PackIrradiance(v.Irradiance)
		uv, _ := quant.PackUVIndex(v.UVIndex)
		w.WriteBits(irr, quant.IrradianceBits)
		w.WriteBits(uv, quant.UVIndexBits)
	case format.KindClouds:
		okta, _ := quant.PackClouds(v.Clouds)
		w.WriteBits(okta, quant.CloudsBits)
	case format.KindAirQuality:
		aqi, _ := quant.PackAirQuality(v.AirQuality)
		w.WriteBits(aqi, quant.AirQualityBits)
	case format.KindRadiation:
		cpm, _ := quant.PackRadiationCPM(v.RadiationCPM)
		dose, _ := quant.PackRadiationDose(v.RadiationDose)
		w.WriteBits(cpm, quant.RadiationCPMBits)
		w.WriteBits(dose, quant.RadiationDoseBits)
	case format.KindDepth:
		depth, _ := quant.PackDepth(v.Depth)
		w.WriteBits(depth, quant.DepthBits)
	case format.KindLocation:
		lat, _ := quant.PackLatitude(v.Latitude)
		lon, _ := quant.PackLongitude(v.Longitude)
		w.WriteBits(lat, quant.LatitudeBits)
		w.WriteBits(lon, quant.LongitudeBits)
	case format.KindDatetime:
		ticks, _ := quant.PackDatetime(v.Datetime)
		w.WriteBits(ticks, quant.DatetimeBits)
	case format.KindFlags:
		w.WriteBits(uint32(v.Flags), quant.FlagsBits)
	}
}

// unpackField reads one field kind from the bitstream into v. Any bit
// pattern is a valid code, so unpacking never fails; the caller checks
// the remaining bit budget first.
func unpackField(r *bitstream.Reader, k format.FieldKind, v *Values) {
	switch k {
	case format.KindBattery:
		v.BatteryLevel = quant.UnpackBatteryLevel(r.ReadBits(quant.BatteryLevelBits))
		v.Charging = r.ReadBit() == 1
	case format.KindLink:
		v.RSSI = quant.UnpackRSSI(r.ReadBits(quant.RSSIBits))
		v.SNR = quant.UnpackSNR(r.ReadBits(quant.SNRBits))
	case format.KindEnvironment:
		v.Temperature = quant.UnpackTemperature(r.ReadBits(quant.TemperatureBits))
		v.Pressure = quant.UnpackPressure(r.ReadBits(quant.PressureBits))
		v.Humidity = quant.UnpackHumidity(r.ReadBits(quant.HumidityBits))
	case format.KindWind:
		v.WindSpeed = quant.UnpackWindSpeed(r.ReadBits(quant.WindSpeedBits))
		v.WindGust = quant.UnpackWindSpeed(r.ReadBits(quant.WindSpeedBits))
		v.WindDirection = quant.UnpackWindDirection(r.ReadBits(quant.WindDirectionBits))
	case format.KindRain:
		v.RainRate = quant.UnpackRainRate(r.ReadBits(quant.RainRateBits))
		v.RainSize = quant.UnpackRainSize(r.ReadBits(quant.RainSizeBits))
	case format.KindSolar:
		v.Irradiance = quant.UnpackIrradiance(r.ReadBits(quant.IrradianceBits))
		v.UVIndex = quant.UnpackUVIndex(r.ReadBits(quant.UVIndexBits))
	case format.KindClouds:
		v.Clouds = quant.UnpackClouds(r.ReadBits(quant.CloudsBits))
	case format.KindAirQuality:
		v.AirQuality = quant.UnpackAirQuality(r.ReadBits(quant.AirQualityBits))
	case format.KindRadiation:
		v.RadiationCPM = quant.UnpackRadiationCPM(r.ReadBits(quant.RadiationCPMBits))
		v.RadiationDose = quant.UnpackRadiationDose(r.ReadBits(quant.RadiationDoseBits))
	case format.KindDepth:
		v.Depth = quant.UnpackDepth(r.ReadBits(quant.DepthBits))
	case format.KindLocation:
		v.Latitude = quant.UnpackLatitude(r.ReadBits(quant.LatitudeBits))
		v.Longitude = quant.UnpackLongitude(r.ReadBits(quant.LongitudeBits))
	case format.KindDatetime:
		v.Datetime = quant.UnpackDatetime(r.ReadBits(quant.DatetimeBits))
	case format.KindFlags:
		v.Flags = uint8(r.ReadBits(quant.FlagsBits))
	}
}
