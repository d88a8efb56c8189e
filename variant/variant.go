// Package variant defines packet layouts: named, ordered lists of field
// kind slots distributed across presence bytes. Layouts are static for a
// deployment; the built-in catalog covers the standard station profiles
// and custom layouts can be loaded from TOML files.
package variant

import (
	"github.com/nimbuslab/sensewire/errs"
	"github.com/nimbuslab/sensewire/format"
	"github.com/nimbuslab/sensewire/section"
)

// Slot binds one field kind to a position in a layout, with a label used
// for JSON and printing. The slot's index in the layout is its presence
// bit position and its order in the field bitstream.
type Slot struct {
	Kind  format.FieldKind
	Label string
}

// Position is the precomputed presence location of a slot.
type Position struct {
	Byte int
	Bit  int
}

// Definition is a compiled packet layout. Slot order is the single
// source of truth for field order in the bitstream; the presence
// positions are computed once at construction, not re-derived per call.
type Definition struct {
	Name  string
	Slots []Slot

	positions []Position
	slotOf    [format.KindCount]int8
}

// NewDefinition compiles a layout from its slot list.
//
// Returns ErrVariantSlotCount when the layout exceeds the presence chain
// capacity and ErrVariantDupKind when a kind appears twice.
func NewDefinition(name string, slots []Slot) (*Definition, error) {
	if len(slots) > section.MaxSlots {
		return nil, errs.ErrVariantSlotCount
	}

	d := &Definition{
		Name:      name,
		Slots:     slots,
		positions: make([]Position, len(slots)),
	}
	for i := range d.slotOf {
		d.slotOf[i] = -1
	}

	for i, s := range slots {
		if !s.Kind.Valid() {
			return nil, errs.ErrKindNotInSlots
		}
		if d.slotOf[s.Kind] >= 0 {
			return nil, errs.ErrVariantDupKind
		}
		d.slotOf[s.Kind] = int8(i)

		byteIdx, bit := section.SlotPosition(i)
		d.positions[i] = Position{Byte: byteIdx, Bit: bit}
		if s.Label == "" {
			d.Slots[i].Label = s.Kind.String()
		}
	}

	return d, nil
}

// SlotOf returns the slot index of a kind in this layout.
func (d *Definition) SlotOf(k format.FieldKind) (int, bool) {
	if !k.Valid() || d.slotOf[k] < 0 {
		return 0, false
	}

	return int(d.slotOf[k]), true
}

// PositionOf returns the precomputed presence byte/bit of a slot.
func (d *Definition) PositionOf(slot int) Position {
	return d.positions[slot]
}

// Contains reports whether the layout has a slot for k.
func (d *Definition) Contains(k format.FieldKind) bool {
	_, ok := d.SlotOf(k)

	return ok
}
