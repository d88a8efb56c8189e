package packet

import (
	"fmt"
	"strings"

	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/tlv"
)

// Dump renders a field-by-field breakdown of a decoded packet: bit
// offsets, widths, raw codes and decoded values. Intended for debugging
// and the inspect CLI, not for machine consumption.
func (p *Packet) Dump() string {
	var b strings.Builder

	fmt.Fprintf(&b, "variant=%d (%s) station=%d sequence=%d bits=%d\n",
		p.Header.Variant, p.Layout.Name, p.Header.Station, p.Header.Sequence, p.BitLen)

	for _, span := range p.Spans {
		fmt.Fprintf(&b, "  %-12s off=%-4d width=%-3d raw=0x%-8X %s (range %s)\n",
			span.Kind, span.Offset, span.Bits, span.Raw, p.fieldString(span.Kind), kindRange(span.Kind))
	}

	for i, rec := range p.Records {
		if rec.Format == tlv.FormatString {
			fmt.Fprintf(&b, "  tlv[%d] type=%d string %q\n", i, rec.Type, rec.Text)
			continue
		}
		fmt.Fprintf(&b, "  tlv[%d] type=%d raw % X\n", i, rec.Type, rec.Data)
	}

	return b.String()
}

// String renders a compact one-line summary of the packet.
func (p *Packet) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "station %d seq %d [%s]", p.Header.Station, p.Header.Sequence, p.Layout.Name)
	for _, span := range p.Spans {
		fmt.Fprintf(&b, " %s", p.fieldString(span.Kind))
	}
	if len(p.Records) > 0 {
		fmt.Fprintf(&b, " +%d tlv", len(p.Records))
	}

	return b.String()
}

func (p *Packet) fieldString(k format.FieldKind) string {
	v := &p.Values
	switch k {
	case format.KindBattery:
		state := "discharging"
		if v.Charging {
			state = "charging"
		}
		return fmt.Sprintf("battery=%d%% %s", v.BatteryLevel, state)
	case format.KindLink:
		return fmt.Sprintf("rssi=%ddBm snr=%ddB", v.RSSI, v.SNR)
	case format.KindEnvironment:
		return fmt.Sprintf("temp=%.2fC pressure=%dhPa humidity=%d%%", v.Temperature, v.Pressure, v.Humidity)
	case format.KindWind:
		return fmt.Sprintf("wind=%.1fm/s gust=%.1fm/s dir=%ddeg", v.WindSpeed, v.WindGust, v.WindDirection)
	case format.KindRain:
		return fmt.Sprintf("rain=%dmm/hr size=%.2fmm", v.RainRate, v.RainSize)
	case format.KindSolar:
		return fmt.Sprintf("irradiance=%dW/m2 uv=%d", v.Irradiance, v.UVIndex)
	case format.KindClouds:
		return fmt.Sprintf("clouds=%dokta", v.Clouds)
	case format.KindAirQuality:
		return fmt.Sprintf("aqi=%d", v.AirQuality)
	case format.KindRadiation:
		return fmt.Sprintf("radiation=%dcpm dose=%.2fuSv/h", v.RadiationCPM, v.RadiationDose)
	case format.KindDepth:
		return fmt.Sprintf("depth=%dcm", v.Depth)
	case format.KindLocation:
		return fmt.Sprintf("lat=%.5f lon=%.5f", v.Latitude, v.Longitude)
	case format.KindDatetime:
		return fmt.Sprintf("time=%ds", v.Datetime)
	case format.KindFlags:
		return fmt.Sprintf("flags=0b%08b", v.Flags)
	}

	return k.String()
}

// kindRange renders the valid physical range of a field kind for dump
// output.
func kindRange(k format.FieldKind) string {
	switch k {
	case format.KindBattery:
		return "0..100%"
	case format.KindLink:
		return "-120..-60dBm, -20..10dB"
	case format.KindEnvironment:
		return "-40..80C, 850..1105hPa, 0..100%"
	case format.KindWind:
		return "0..63.5m/s, 0..359deg"
	case format.KindRain:
		return "0..255mm/hr, 0..6.0mm"
	case format.KindSolar:
		return "0..1023W/m2, uv 0..15"
	case format.KindClouds:
		return "0..8okta"
	case format.KindAirQuality:
		return "0..500"
	case format.KindRadiation:
		return "0..16383cpm, 0..163.83uSv/h"
	case format.KindDepth:
		return "0..1023cm"
	case format.KindLocation:
		return "-90..90, -180..180"
	case format.KindDatetime:
		return "0..83886075s"
	case format.KindFlags:
		return "8-bit mask"
	}

	return "?"
}
