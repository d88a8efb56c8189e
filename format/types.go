// Package format defines the closed enumerations shared across the
// sensewire codec: field kinds, the presence bitmap set type, and the
// compression selectors used by the packet archive.
package format

type (
	FieldKind       uint8
	CompressionType uint8
)

// Field kinds, in presence-bitmap order. The numeric value of a kind is
// its bit index in KindSet; it is unrelated to a kind's slot position,
// which each variant layout assigns independently.
const (
	KindBattery     FieldKind = iota // battery level (5 bits) + charging (1 bit)
	KindLink                         // rssi (4 bits) + snr (2 bits)
	KindEnvironment                  // temperature (9) + pressure (8) + humidity (7)
	KindWind                         // speed (7) + gust (7) + direction (8)
	KindRain                         // rate (8) + size (4)
	KindSolar                        // irradiance (10) + uv index (4)
	KindClouds                       // okta (4)
	KindAirQuality                   // aqi (9)
	KindRadiation                    // cpm (14) + dose (14)
	KindDepth                        // cm (10)
	KindLocation                     // latitude (24) + longitude (24)
	KindDatetime                     // 5-second ticks (24)
	KindFlags                        // bitmask (8)

	KindCount
)

// Bits returns the packed width of the kind's field group in the bitstream.
func (k FieldKind) Bits() int {
	switch k {
	case KindBattery:
		return 6
	case KindLink:
		return 6
	case KindEnvironment:
		return 24
	case KindWind:
		return 22
	case KindRain:
		return 12
	case KindSolar:
		return 14
	case KindClouds:
		return 4
	case KindAirQuality:
		return 9
	case KindRadiation:
		return 28
	case KindDepth:
		return 10
	case KindLocation:
		return 48
	case KindDatetime:
		return 24
	case KindFlags:
		return 8
	default:
		return 0
	}
}

// Valid reports whether k names a real field kind.
func (k FieldKind) Valid() bool {
	return k < KindCount
}

func (k FieldKind) String() string {
	switch k {
	case KindBattery:
		return "battery"
	case KindLink:
		return "link"
	case KindEnvironment:
		return "environment"
	case KindWind:
		return "wind"
	case KindRain:
		return "rain"
	case KindSolar:
		return "solar"
	case KindClouds:
		return "clouds"
	case KindAirQuality:
		return "air_quality"
	case KindRadiation:
		return "radiation"
	case KindDepth:
		return "depth"
	case KindLocation:
		return "location"
	case KindDatetime:
		return "datetime"
	case KindFlags:
		return "flags"
	default:
		return "unknown"
	}
}

// ParseFieldKind maps a kind name (as produced by String) back to its
// FieldKind. It is used by the variant catalog when loading layouts from
// configuration files.
func ParseFieldKind(name string) (FieldKind, bool) {
	for k := FieldKind(0); k < KindCount; k++ {
		if k.String() == name {
			return k, true
		}
	}

	return KindCount, false
}

// KindSet is a presence bitmap over field kinds. Bit i corresponds to
// FieldKind(i).
type KindSet uint16

// Has reports whether the set contains k.
func (s KindSet) Has(k FieldKind) bool {
	return s&(1<<k) != 0
}

// Add returns the set with k included.
func (s KindSet) Add(k FieldKind) KindSet {
	return s | (1 << k)
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	n := 0
	for k := FieldKind(0); k < KindCount; k++ {
		if s.Has(k) {
			n++
		}
	}

	return n
}

// Compression selectors for archive record payloads.
const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
