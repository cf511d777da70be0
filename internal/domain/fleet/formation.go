package fleet

import (
	"encoding/json"
	"fmt"
)

// Shape is the structural kind of a formation
type Shape string

const (
	ShapeStandard Shape = "standard"
	ShapeExtended Shape = "extended"
	ShapeCombined Shape = "combined"
)

// ParseShape validates a shape name
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeStandard, ShapeExtended, ShapeCombined:
		return Shape(s), nil
	}
	return "", fmt.Errorf("unknown formation shape %q (want standard, extended or combined)", s)
}

// Section selects one flat slot list of a formation
type Section int

const (
	SectionMain   Section = 0
	SectionEscort Section = 1
)

func (s Section) String() string {
	switch s {
	case SectionMain:
		return "main"
	case SectionEscort:
		return "escort"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// Slot holds an instance id, or Empty. Instance ids are always positive.
type Slot int

// Empty is the vacant slot
const Empty Slot = 0

// IsEmpty reports whether the slot is vacant
func (s Slot) IsEmpty() bool {
	return s <= 0
}

// InstanceID returns the referenced unit instance (0 for an empty slot)
func (s Slot) InstanceID() int {
	if s.IsEmpty() {
		return 0
	}
	return int(s)
}

// MarshalJSON writes null for an empty slot
func (s Slot) MarshalJSON() ([]byte, error) {
	if s.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(int(s))
}

// Formation is the sealed sum type over the three formation shapes.
// Concrete values are comparable, so two formations are structurally equal iff ==.
type Formation interface {
	Shape() Shape
	// Sections returns the flat slot lists in order (main first)
	Sections() [][]Slot
	// Flatten concatenates all sections (combined: main then escort)
	Flatten() []Slot
	sealed()
}

// Standard is a single six-slot fleet
type Standard struct {
	Slots [6]Slot
}

// Extended is a single fleet with a seventh slot
type Extended struct {
	Slots [7]Slot
}

// Combined pairs a main fleet with an escort fleet
type Combined struct {
	Main   [6]Slot
	Escort [6]Slot
}

func (Standard) Shape() Shape { return ShapeStandard }
func (Extended) Shape() Shape { return ShapeExtended }
func (Combined) Shape() Shape { return ShapeCombined }

func (f Standard) Sections() [][]Slot { return [][]Slot{f.Slots[:]} }
func (f Extended) Sections() [][]Slot { return [][]Slot{f.Slots[:]} }
func (f Combined) Sections() [][]Slot { return [][]Slot{f.Main[:], f.Escort[:]} }

func (f Standard) Flatten() []Slot { return append([]Slot(nil), f.Slots[:]...) }
func (f Extended) Flatten() []Slot { return append([]Slot(nil), f.Slots[:]...) }
func (f Combined) Flatten() []Slot {
	return append(append([]Slot(nil), f.Main[:]...), f.Escort[:]...)
}

func (Standard) sealed() {}
func (Extended) sealed() {}
func (Combined) sealed() {}

// NewFormation returns an empty formation of the given shape
func NewFormation(shape Shape) Formation {
	switch shape {
	case ShapeExtended:
		return Extended{}
	case ShapeCombined:
		return Combined{}
	default:
		return Standard{}
	}
}

// Capacity returns the total slot count of a shape
func Capacity(shape Shape) int {
	switch shape {
	case ShapeExtended:
		return 7
	case ShapeCombined:
		return 12
	default:
		return 6
	}
}

// slotAt reads one slot; ok is false for coordinates outside the shape
func slotAt(f Formation, section Section, index int) (Slot, bool) {
	sections := f.Sections()
	if section < 0 || int(section) >= len(sections) {
		return Empty, false
	}
	slots := sections[section]
	if index < 0 || index >= len(slots) {
		return Empty, false
	}
	return slots[index], true
}

// withSlot returns a copy of f with one slot replaced. The caller validates the coordinate.
func withSlot(f Formation, section Section, index int, value Slot) Formation {
	switch v := f.(type) {
	case Standard:
		v.Slots[index] = value
		return v
	case Extended:
		v.Slots[index] = value
		return v
	case Combined:
		if section == SectionEscort {
			v.Escort[index] = value
		} else {
			v.Main[index] = value
		}
		return v
	}
	return f
}

// redistribute fills a new formation of the given shape from a flat slot sequence,
// section by section in order. It returns the slots that did not fit.
func redistribute(flat []Slot, shape Shape) (Formation, []Slot) {
	out := NewFormation(shape)
	pos := 0
	for s, slots := range out.Sections() {
		for i := range slots {
			if pos >= len(flat) {
				return out, nil
			}
			out = withSlot(out, Section(s), i, flat[pos])
			pos++
		}
	}
	return out, flat[pos:]
}

// Occupied counts the non-empty slots of a formation
func Occupied(f Formation) int {
	n := 0
	for _, s := range f.Flatten() {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}
