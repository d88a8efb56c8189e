// Package jsonio bridges the binary packet codec to JSON documents for
// uplink APIs and tooling. The field-kind/label mapping is owned here;
// fastjson is used purely as the parse/build backend.
package jsonio

import (
	"encoding/base64"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/packet"
	"github.com/nimbuslab/sensewire/tlv"
	"github.com/nimbuslab/sensewire/variant"
)

// DecodeToJSON decodes a packet and renders it as a JSON document.
// Absent fields are omitted entirely rather than emitted as nulls.
func DecodeToJSON(data []byte) (string, error) {
	return DecodeToJSONWithCatalog(data, variant.Default())
}

// DecodeToJSONWithCatalog is DecodeToJSON against a specific catalog.
func DecodeToJSONWithCatalog(data []byte, catalog *variant.Catalog) (string, error) {
	p, err := packet.DecodeWithCatalog(data, catalog)
	if err != nil {
		return "", err
	}

	var arena fastjson.Arena
	root := arena.NewObject()

	root.Set("variant", arena.NewNumberInt(int(p.Header.Variant)))
	root.Set("station", arena.NewNumberInt(int(p.Header.Station)))
	root.Set("sequence", arena.NewNumberInt(int(p.Header.Sequence)))

	v := &p.Values
	for _, s := range p.Layout.Slots {
		if !p.Has(s.Kind) {
			continue
		}

		switch s.Kind {
		case format.KindBattery:
			o := arena.NewObject()
			o.Set("level", arena.NewNumberInt(v.BatteryLevel))
			o.Set("charging", boolValue(&arena, v.Charging))
			root.Set(s.Label, o)
		case format.KindLink:
			o := arena.NewObject()
			o.Set("rssi", arena.NewNumberInt(v.RSSI))
			o.Set("snr", arena.NewNumberInt(v.SNR))
			root.Set(s.Label, o)
		case format.KindEnvironment:
			o := arena.NewObject()
			o.Set("temperature", arena.NewNumberFloat64(v.Temperature))
			o.Set("pressure", arena.NewNumberInt(v.Pressure))
			o.Set("humidity", arena.NewNumberInt(v.Humidity))
			root.Set(s.Label, o)
		case format.KindWind:
			o := arena.NewObject()
			o.Set("speed", arena.NewNumberFloat64(v.WindSpeed))
			o.Set("gust", arena.NewNumberFloat64(v.WindGust))
			o.Set("direction", arena.NewNumberInt(v.WindDirection))
			root.Set(s.Label, o)
		case format.KindRain:
			o := arena.NewObject()
			o.Set("rate", arena.NewNumberInt(v.RainRate))
			o.Set("size", arena.NewNumberFloat64(v.RainSize))
			root.Set(s.Label, o)
		case format.KindSolar:
			o := arena.NewObject()
			o.Set("irradiance", arena.NewNumberInt(v.Irradiance))
			o.Set("uv_index", arena.NewNumberInt(v.UVIndex))
			root.Set(s.Label, o)
		case format.KindClouds:
			root.Set(s.Label, arena.NewNumberInt(v.Clouds))
		case format.KindAirQuality:
			root.Set(s.Label, arena.NewNumberInt(v.AirQuality))
		case format.KindRadiation:
			o := arena.NewObject()
			o.Set("cpm", arena.NewNumberInt(v.RadiationCPM))
			o.Set("dose", arena.NewNumberFloat64(v.RadiationDose))
			root.Set(s.Label, o)
		case format.KindDepth:
			root.Set(s.Label, arena.NewNumberInt(v.Depth))
		case format.KindLocation:
			o := arena.NewObject()
			o.Set("latitude", arena.NewNumberFloat64(v.Latitude))
			o.Set("longitude", arena.NewNumberFloat64(v.Longitude))
			root.Set(s.Label, o)
		case format.KindDatetime:
			root.Set(s.Label, arena.NewNumberInt(int(v.Datetime)))
		case format.KindFlags:
			root.Set(s.Label, arena.NewNumberInt(int(v.Flags)))
		}
	}

	if len(p.Records) > 0 {
		records := arena.NewArray()
		for i, rec := range p.Records {
			o := arena.NewObject()
			o.Set("type", arena.NewNumberInt(int(rec.Type)))
			if rec.Format == tlv.FormatString {
				o.Set("format", arena.NewString("string"))
				o.Set("text", arena.NewString(rec.Text))
			} else {
				o.Set("format", arena.NewString("raw"))
				o.Set("data", arena.NewString(base64.StdEncoding.EncodeToString(rec.Data)))
			}
			records.SetArrayItem(i, o)
		}
		root.Set("tlv", records)
	}

	return string(root.MarshalTo(nil)), nil
}

// EncodeFromJSON encodes a JSON document into buf and returns the
// packet's byte length. The variant, station and sequence members are
// required; field members are matched by slot label and all are
// optional.
func EncodeFromJSON(doc string, buf []byte) (int, error) {
	return EncodeFromJSONWithCatalog(doc, buf, variant.Default())
}

// EncodeFromJSONWithCatalog is EncodeFromJSON against a specific
// catalog.
func EncodeFromJSONWithCatalog(doc string, buf []byte, catalog *variant.Catalog) (int, error) {
	var parser fastjson.Parser
	root, err := parser.Parse(doc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrJSONParse, err)
	}

	variantCode, err := requiredInt(root, "variant")
	if err != nil {
		return 0, err
	}
	station, err := requiredInt(root, "station")
	if err != nil {
		return 0, err
	}
	sequence, err := requiredInt(root, "sequence")
	if err != nil {
		return 0, err
	}

	def, err := catalog.Lookup(uint8(variantCode))
	if err != nil {
		return 0, err
	}

	enc := packet.NewEncoderWithCatalog(catalog)
	if err := enc.Begin(buf, uint8(variantCode), uint16(station), uint16(sequence)); err != nil {
		return 0, err
	}

	for _, s := range def.Slots {
		field := root.Get(s.Label)
		if field == nil {
			continue
		}
		if err := setField(enc, s.Kind, field); err != nil {
			return 0, err
		}
	}

	if records := root.Get("tlv"); records != nil {
		items, err := records.Array()
		if err != nil {
			return 0, errs.ErrJSONBadValue
		}
		for _, item := range items {
			rec, err := parseTLV(item)
			if err != nil {
				return 0, err
			}
			if err := enc.AddTLV(rec); err != nil {
				return 0, err
			}
		}
	}

	return enc.End()
}

func setField(enc *packet.Encoder, k format.FieldKind, field *fastjson.Value) error {
	switch k {
	case format.KindBattery:
		return enc.SetBattery(field.GetInt("level"), field.GetBool("charging"))
	case format.KindLink:
		return enc.SetLink(field.GetInt("rssi"), field.GetInt("snr"))
	case format.KindEnvironment:
		return enc.SetEnvironment(field.GetFloat64("temperature"), field.GetInt("pressure"), field.GetInt("humidity"))
	case format.KindWind:
		return enc.SetWind(field.GetFloat64("speed"), field.GetFloat64("gust"), field.GetInt("direction"))
	case format.KindRain:
		return enc.SetRain(field.GetInt("rate"), field.GetFloat64("size"))
	case format.KindSolar:
		return enc.SetSolar(field.GetInt("irradiance"), field.GetInt("uv_index"))
	case format.KindClouds:
		return enc.SetClouds(field.GetInt())
	case format.KindAirQuality:
		return enc.SetAirQuality(field.GetInt())
	case format.KindRadiation:
		return enc.SetRadiation(field.GetInt("cpm"), field.GetFloat64("dose"))
	case format.KindDepth:
		return enc.SetDepth(field.GetInt())
	case format.KindLocation:
		return enc.SetLocation(field.GetFloat64("latitude"), field.GetFloat64("longitude"))
	case format.KindDatetime:
		return enc.SetDatetime(uint32(field.GetInt()))
	case format.KindFlags:
		return enc.SetFlags(uint8(field.GetInt()))
	}

	return errs.ErrJSONBadValue
}

func parseTLV(item *fastjson.Value) (tlv.Record, error) {
	typ := item.GetInt("type")

	switch string(item.GetStringBytes("format")) {
	case "string":
		return tlv.String(uint8(typ), string(item.GetStringBytes("text")))
	case "raw":
		data, err := base64.StdEncoding.DecodeString(string(item.GetStringBytes("data")))
		if err != nil {
			return tlv.Record{}, errs.ErrJSONBadValue
		}

		return tlv.Raw(uint8(typ), data)
	}

	return tlv.Record{}, errs.ErrJSONBadValue
}

func requiredInt(root *fastjson.Value, key string) (int, error) {
	field := root.Get(key)
	if field == nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrJSONMissingField, key)
	}

	n, err := field.Int()
	if err != nil {
		return 0, errs.ErrJSONBadValue
	}

	return n, nil
}

func boolValue(arena *fastjson.Arena, b bool) *fastjson.Value {
	if b {
		return arena.NewTrue()
	}

	return arena.NewFalse()
}
