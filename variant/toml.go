package variant

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/nimbuslab/sensewire/format"
)

// layoutFile is the TOML document shape for custom variant layouts:
//
//	[[variant]]
//	code = 6
//	name = "orchard"
//
//	[[variant.slot]]
//	kind = "battery"
//
//	[[variant.slot]]
//	kind = "environment"
//	label = "canopy"
type layoutFile struct {
	Variants []layoutEntry `toml:"variant"`
}

type layoutEntry struct {
	Code  uint8       `toml:"code"`
	Name  string      `toml:"name"`
	Slots []layoutSlot `toml:"slot"`
}

type layoutSlot struct {
	Kind  string `toml:"kind"`
	Label string `toml:"label"`
}

// LoadTOML parses custom layouts from a TOML document and registers them
// into the catalog.
func (c *Catalog) LoadTOML(data []byte) error {
	var file layoutFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("variant layout parse failed: %w", err)
	}

	for _, entry := range file.Variants {
		if entry.Name == "" {
			return fmt.Errorf("variant %d: missing name", entry.Code)
		}

		slots := make([]Slot, len(entry.Slots))
		for i, s := range entry.Slots {
			kind, ok := format.ParseFieldKind(s.Kind)
			if !ok {
				return fmt.Errorf("variant %q slot %d: unknown kind %q", entry.Name, i, s.Kind)
			}
			slots[i] = Slot{Kind: kind, Label: s.Label}
		}

		def, err := NewDefinition(entry.Name, slots)
		if err != nil {
			return fmt.Errorf("variant %q: %w", entry.Name, err)
		}
		if err := c.Register(entry.Code, def); err != nil {
			return fmt.Errorf("variant %q: %w", entry.Name, err)
		}
	}

	return nil
}

// LoadTOMLFile reads and registers custom layouts from a file path.
func (c *Catalog) LoadTOMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("variant layout load failed (%s): %w", path, err)
	}

	return c.LoadTOML(data)
}
