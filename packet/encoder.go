package packet

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/internal/bitstream"
	"github.com/nimbuslab/sensewire/quant"
	"github.com/nimbuslab/sensewire/section"
	"github.com/nimbuslab/sensewire/tlv"
	"github.com/nimbuslab/sensewire/variant"
)

type encoderState uint8

const (
	stateIdle encoderState = iota
	stateBegun
	stateEnded
)

// Encoder builds exactly one packet at a time into a caller-supplied
// buffer. The life cycle is Begin, any number of Set calls, End; Begin
// may be called again at any point to restart with a fresh packet.
//
// Set calls stage values and mark presence without touching the buffer;
// End performs the single write pass. Validation is eager and
// field-local: a Set call that fails leaves no trace in the packet.
//
// The Encoder is mutable, non-reentrant state. It must not be shared
// across concurrent encodes.
type Encoder struct {
	catalog *variant.Catalog

	buf     []byte
	def     *variant.Definition
	header  section.Header
	values  Values
	present format.KindSet
	records [tlv.MaxRecords]tlv.Record
	nrec    int
	state   encoderState
}

// NewEncoder creates an encoder resolving variants against the default
// catalog.
func NewEncoder() *Encoder {
	return NewEncoderWithCatalog(variant.Default())
}

// NewEncoderWithCatalog creates an encoder bound to a specific catalog.
func NewEncoderWithCatalog(catalog *variant.Catalog) *Encoder {
	return &Encoder{catalog: catalog}
}

// Begin starts a new packet into buf. It validates the header fields
// (variant 0-14, station 0-4095), resolves the variant layout, zeroes
// the buffer and discards any previously staged state.
func (e *Encoder) Begin(buf []byte, variantCode uint8, station, sequence uint16) error {
	if buf == nil {
		return errs.ErrNilBuffer
	}

	header := section.Header{Variant: variantCode, Station: station, Sequence: sequence}
	if err := header.Validate(); err != nil {
		return err
	}

	def, err := e.catalog.Lookup(variantCode)
	if err != nil {
		return err
	}

	clear(buf)
	e.buf = buf
	e.def = def
	e.header = header
	e.values = Values{}
	e.present = 0
	e.nrec = 0
	e.state = stateBegun

	return nil
}

// stage performs the shared Set-call checks: encoder state, kind
// membership in the variant layout and duplicate rejection.
func (e *Encoder) stage(k format.FieldKind) error {
	switch e.state {
	case stateIdle:
		return errs.ErrNotBegun
	case stateEnded:
		return errs.ErrAlreadyEnded
	}
	if !e.def.Contains(k) {
		return errs.ErrKindNotInSlots
	}
	if e.present.Has(k) {
		return errs.ErrDuplicateField
	}

	return nil
}

// SetBattery stages the battery field: level in percent plus the
// charging flag.
func (e *Encoder) SetBattery(level int, charging bool) error {
	if err := e.stage(format.KindBattery); err != nil {
		return err
	}
	if _, err := quant.PackBatteryLevel(level); err != nil {
		return err
	}

	e.values.BatteryLevel = level
	e.values.Charging = charging
	e.present = e.present.Add(format.KindBattery)

	return nil
}

// SetLink stages the link quality field: RSSI in dBm and SNR in dB.
func (e *Encoder) SetLink(rssi, snr int) error {
	if err := e.stage(format.KindLink); err != nil {
		return err
	}
	if _, err := quant.PackRSSI(rssi); err != nil {
		return err
	}
	if _, err := quant.PackSNR(snr); err != nil {
		return err
	}

	e.values.RSSI = rssi
	e.values.SNR = snr
	e.present = e.present.Add(format.KindLink)

	return nil
}

// SetEnvironment stages temperature (Celsius), pressure (hPa) and
// relative humidity (percent).
func (e *Encoder) SetEnvironment(temperature float64, pressure, humidity int) error {
	if err := e.stage(format.KindEnvironment); err != nil {
		return err
	}
	if _, err := quant.PackTemperature(temperature); err != nil {
		return err
	}
	if _, err := quant.PackPressure(pressure); err != nil {
		return err
	}
	if _, err := quant.PackHumidity(humidity); err != nil {
		return err
	}

	e.values.Temperature = temperature
	e.values.Pressure = pressure
	e.values.Humidity = humidity
	e.present = e.present.Add(format.KindEnvironment)

	return nil
}

// SetWind stages sustained speed and gust (m/s) and direction (degrees).
func (e *Encoder) SetWind(speed, gust float64, direction int) error {
	if err := e.stage(format.KindWind); err != nil {
		return err
	}
	if _, err := quant.PackWindSpeed(speed); err != nil {
		return err
	}
	if _, err := quant.PackWindSpeed(gust); err != nil {
		return err
	}
	if _, err := quant.PackWindDirection(direction); err != nil {
		return err
	}

	e.values.WindSpeed = speed
	e.values.WindGust = gust
	e.values.WindDirection = direction
	e.present = e.present.Add(format.KindWind)

	return nil
}

// SetRain stages rain rate (mm/hr) and drop size (mm/day).
func (e *Encoder) SetRain(rate int, size float64) error {
	if err := e.stage(format.KindRain); err != nil {
		return err
	}
	if _, err := quant.PackRainRate(rate); err != nil {
		return err
	}
	if _, err := quant.PackRainSize(size); err != nil {
		return err
	}

	e.values.RainRate = rate
	e.values.RainSize = size
	e.present = e.present.Add(format.KindRain)

	return nil
}

// SetSolar stages irradiance (W/m2) and the UV index.
func (e *Encoder) SetSolar(irradiance, uvIndex int) error {
	if err := e.stage(format.KindSolar); err != nil {
		return err
	}
	if _, err := quant.PackIrradiance(irradiance); err != nil {
		return err
	}
	if _, err := quant.PackUVIndex(uvIndex); err != nil {
		return err
	}

	e.values.Irradiance = irradiance
	e.values.UVIndex = uvIndex
	e.present = e.present.Add(format.KindSolar)

	return nil
}

// SetClouds stages cloud cover in okta.
func (e *Encoder) SetClouds(okta int) error {
	if err := e.stage(format.KindClouds); err != nil {
		return err
	}
	if _, err := quant.PackClouds(okta); err != nil {
		return err
	}

	e.values.Clouds = okta
	e.present = e.present.Add(format.KindClouds)

	return nil
}

// SetAirQuality stages the air quality index.
func (e *Encoder) SetAirQuality(aqi int) error {
	if err := e.stage(format.KindAirQuality); err != nil {
		return err
	}
	if _, err := quant.PackAirQuality(aqi); err != nil {
		return err
	}

	e.values.AirQuality = aqi
	e.present = e.present.Add(format.KindAirQuality)

	return nil
}

// SetRadiation stages counts per minute and dose rate (uSv/h).
func (e *Encoder) SetRadiation(cpm int, dose float64) error {
	if err := e.stage(format.KindRadiation); err != nil {
		return err
	}
	if _, err := quant.PackRadiationCPM(cpm); err != nil {
		return err
	}
	if _, err := quant.PackRadiationDose(dose); err != nil {
		return err
	}

	e.values.RadiationCPM = cpm
	e.values.RadiationDose = dose
	e.present = e.present.Add(format.KindRadiation)

	return nil
}

// SetDepth stages a water depth in cm.
func (e *Encoder) SetDepth(cm int) error {
	if err := e.stage(format.KindDepth); err != nil {
		return err
	}
	if _, err := quant.PackDepth(cm); err != nil {
		return err
	}

	e.values.Depth = cm
	e.present = e.present.Add(format.KindDepth)

	return nil
}

// SetLocation stages a position in degrees.
func (e *Encoder) SetLocation(latitude, longitude float64) error {
	if err := e.stage(format.KindLocation); err != nil {
		return err
	}
	if _, err := quant.PackLatitude(latitude); err != nil {
		return err
	}
	if _, err := quant.PackLongitude(longitude); err != nil {
		return err
	}

	e.values.Latitude = latitude
	e.values.Longitude = longitude
	e.present = e.present.Add(format.KindLocation)

	return nil
}

// SetDatetime stages the device time in seconds (5 s resolution).
func (e *Encoder) SetDatetime(seconds uint32) error {
	if err := e.stage(format.KindDatetime); err != nil {
		return err
	}
	if _, err := quant.PackDatetime(seconds); err != nil {
		return err
	}

	e.values.Datetime = seconds
	e.present = e.present.Add(format.KindDatetime)

	return nil
}

// SetFlags stages the 8-bit flag bitmask.
func (e *Encoder) SetFlags(flags uint8) error {
	if err := e.stage(format.KindFlags); err != nil {
		return err
	}

	e.values.Flags = flags
	e.present = e.present.Add(format.KindFlags)

	return nil
}

// AddTLV appends an extension record to the packet's TLV section.
func (e *Encoder) AddTLV(rec tlv.Record) error {
	switch e.state {
	case stateIdle:
		return errs.ErrNotBegun
	case stateEnded:
		return errs.ErrAlreadyEnded
	}
	if e.nrec == tlv.MaxRecords {
		return errs.ErrTLVTableFull
	}

	e.records[e.nrec] = rec
	e.nrec++

	return nil
}

// End writes the packet: header, presence chain, fields in variant slot
// order, then the TLV section. It fails with ErrBufferTooSmall before
// writing anything when the packet would not fit, leaving the encoder in
// the Begun state; on success the encoder transitions to Ended and the
// final byte length is returned.
func (e *Encoder) End() (int, error) {
	switch e.state {
	case stateIdle:
		return 0, errs.ErrNotBegun
	case stateEnded:
		return 0, errs.ErrAlreadyEnded
	}

	populated := make([]bool, len(e.def.Slots))
	for i, s := range e.def.Slots {
		populated[i] = e.present.Has(s.Kind)
	}

	chain, err := section.BuildPresence(populated, e.nrec > 0)
	if err != nil {
		return 0, err
	}

	bits := section.HeaderBits + 8*len(chain)
	for i, s := range e.def.Slots {
		if populated[i] {
			bits += s.Kind.Bits()
		}
	}
	for i := 0; i < e.nrec; i++ {
		bits += e.records[i].Bits()
	}

	if bits > len(e.buf)*8 {
		return 0, errs.ErrBufferTooSmall
	}

	w := bitstream.NewWriter(e.buf)
	e.header.Pack(w)
	for _, b := range chain {
		w.WriteBits(uint32(b), 8)
	}
	for i, s := range e.def.Slots {
		if populated[i] {
			packField(w, s.Kind, &e.values)
		}
	}
	for i := 0; i < e.nrec; i++ {
		e.records[i].Pack(w, i < e.nrec-1)
	}

	if w.Overflowed() {
		return 0, errs.ErrBufferOverflow
	}

	e.state = stateEnded

	return w.ByteLen(), nil
}
