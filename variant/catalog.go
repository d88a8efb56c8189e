package variant

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/section"
)

// Built-in variant codes.
const (
	CodeStandard  = 0 // full weather station
	CodeHydro     = 1 // water level station
	CodeAirWatch  = 2 // air quality station
	CodeRadiation = 3 // radiation monitor
	CodeTracker   = 4 // mobile sensor with position
)

// Catalog maps 4-bit variant codes to compiled layouts. A catalog is
// populated once at startup and read-only afterwards; the codec never
// mutates it during encode or decode.
type Catalog struct {
	defs [section.MaxVariant + 1]*Definition
}

// NewCatalog creates a catalog preloaded with the built-in layouts.
func NewCatalog() *Catalog {
	c := &Catalog{}

	mustRegister := func(code uint8, name string, kinds ...format.FieldKind) {
		slots := make([]Slot, len(kinds))
		for i, k := range kinds {
			slots[i] = Slot{Kind: k}
		}
		def, err := NewDefinition(name, slots)
		if err != nil {
			panic("variant: bad built-in layout " + name + ": " + err.Error())
		}
		if err := c.Register(code, def); err != nil {
			panic("variant: bad built-in code for " + name + ": " + err.Error())
		}
	}

	// The standard layout deliberately spills into presence byte 1:
	// slots 0-5 fill byte 0, clouds through flags live in byte 1.
	mustRegister(CodeStandard, "standard",
		format.KindBattery, format.KindEnvironment, format.KindWind,
		format.KindRain, format.KindSolar, format.KindLink,
		format.KindClouds, format.KindAirQuality, format.KindDatetime,
		format.KindFlags)
	mustRegister(CodeHydro, "hydro",
		format.KindBattery, format.KindEnvironment, format.KindDepth,
		format.KindRain, format.KindLink, format.KindFlags)
	mustRegister(CodeAirWatch, "airwatch",
		format.KindBattery, format.KindEnvironment, format.KindAirQuality,
		format.KindClouds, format.KindLink, format.KindFlags)
	mustRegister(CodeRadiation, "radiation",
		format.KindBattery, format.KindEnvironment, format.KindRadiation,
		format.KindLink, format.KindFlags)
	mustRegister(CodeTracker, "tracker",
		format.KindBattery, format.KindLocation, format.KindDatetime,
		format.KindLink, format.KindFlags)

	return c
}

// Register binds a layout to a variant code. Re-registering a code that
// already has a layout fails; load custom layouts into fresh codes or
// build a dedicated catalog.
func (c *Catalog) Register(code uint8, def *Definition) error {
	if code == section.ReservedVariant {
		return errs.ErrReservedVariant
	}
	if code > section.MaxVariant {
		return errs.ErrVariantTooHigh
	}
	if c.defs[code] != nil {
		return errs.ErrVariantRegistered
	}

	c.defs[code] = def

	return nil
}

// Lookup returns the layout for a variant code.
func (c *Catalog) Lookup(code uint8) (*Definition, error) {
	if code == section.ReservedVariant {
		return nil, errs.ErrReservedVariant
	}
	if code > section.MaxVariant {
		return nil, errs.ErrVariantTooHigh
	}
	if c.defs[code] == nil {
		return nil, errs.ErrUnknownVariant
	}

	return c.defs[code], nil
}

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog with the built-in layouts.
// Deployments that load custom layouts register them here once at
// startup, before any encode or decode traffic.
func Default() *Catalog {
	return defaultCatalog
}
