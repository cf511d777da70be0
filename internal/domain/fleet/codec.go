package fleet

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// wireDeck is the persisted deck. Legacy documents carry slot objects instead of
// ids, no shape tag, and an isCombined flag pairing a deck with the next one.
type wireDeck struct {
	Name       string            `json:"name"`
	Shape      Shape             `json:"shape,omitempty"`
	Ships      []json.RawMessage `json:"ships"`
	Escort     []json.RawMessage `json:"escort,omitempty"`
	IsCombined bool              `json:"isCombined,omitempty"`
}

type encodedDeck struct {
	Name   string `json:"name"`
	Shape  Shape  `json:"shape"`
	Ships  []Slot `json:"ships"`
	Escort []Slot `json:"escort,omitempty"`
}

// EncodeSets serializes saved sets as {"<set>": [{name, shape, ships, escort}]}
func EncodeSets(sets map[string][]Deck) ([]byte, error) {
	out := make(map[string][]encodedDeck, len(sets))
	for name, decks := range sets {
		list := make([]encodedDeck, 0, len(decks))
		for _, d := range decks {
			e := encodedDeck{Name: d.Name, Shape: d.Fleet.Shape()}
			sections := d.Fleet.Sections()
			e.Ships = append([]Slot(nil), sections[SectionMain]...)
			if len(sections) > 1 {
				e.Escort = append([]Slot(nil), sections[SectionEscort]...)
			}
			list = append(list, e)
		}
		out[name] = list
	}
	return json.Marshal(out)
}

// Encode serializes the saved snapshots (not the working copy)
func (w Workspace) Encode() ([]byte, error) {
	return EncodeSets(w.saved)
}

// DecodeSets parses a stored formations document. A bare deck array is the
// legacy layout and migrates into the single set "default". An empty document
// yields no sets.
func DecodeSets(data []byte) (map[string][]Deck, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string][]Deck{}, nil
	}

	if trimmed[0] == '[' {
		var legacy []wireDeck
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, shared.NewValidationError("decks", fmt.Sprintf("malformed deck list: %v", err))
		}
		decks, err := decodeDecks(legacy)
		if err != nil {
			return nil, err
		}
		return map[string][]Deck{DefaultSetName: decks}, nil
	}

	var raw map[string][]wireDeck
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, shared.NewValidationError("decks", fmt.Sprintf("malformed fleet sets: %v", err))
	}
	sets := make(map[string][]Deck, len(raw))
	for name, list := range raw {
		decks, err := decodeDecks(list)
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", name, err)
		}
		sets[name] = decks
	}
	return sets, nil
}

// LoadWorkspace decodes a stored document into a workspace with the given active set
func LoadWorkspace(data []byte, active string) (Workspace, error) {
	sets, err := DecodeSets(data)
	if err != nil {
		return Workspace{}, err
	}
	return NewWorkspace(sets, active), nil
}

func decodeDecks(list []wireDeck) ([]Deck, error) {
	decks := make([]Deck, 0, len(list))
	for i := 0; i < len(list); i++ {
		w := list[i]
		ships, err := decodeSlots(w.Ships)
		if err != nil {
			return nil, fmt.Errorf("deck %d: %w", i, err)
		}
		escort, err := decodeSlots(w.Escort)
		if err != nil {
			return nil, fmt.Errorf("deck %d escort: %w", i, err)
		}

		var fleet Formation
		switch {
		case w.Shape != "":
			shape, err := ParseShape(string(w.Shape))
			if err != nil {
				return nil, shared.NewValidationError("shape", err.Error())
			}
			fleet = fill(shape, ships, escort)
		case w.IsCombined && i+1 < len(list):
			next, err := decodeSlots(list[i+1].Ships)
			if err != nil {
				return nil, fmt.Errorf("deck %d: %w", i+1, err)
			}
			fleet = fill(ShapeCombined, ships, next)
			i++
		case len(ships) == Capacity(ShapeExtended):
			fleet = fill(ShapeExtended, ships, nil)
		default:
			fleet = fill(ShapeStandard, ships, nil)
		}

		name := w.Name
		if name == "" || nameTaken(decks, name) {
			name = nextDeckName(decks)
		}
		decks = append(decks, Deck{Name: name, Fleet: fleet})
	}
	return decks, nil
}

// fill builds a formation from a main list and an optional escort list,
// truncating or padding each section
func fill(shape Shape, main, escort []Slot) Formation {
	out := NewFormation(shape)
	lists := [][]Slot{main, escort}
	for s, slots := range out.Sections() {
		for i := range slots {
			if i < len(lists[s]) {
				out = withSlot(out, Section(s), i, lists[s][i])
			}
		}
	}
	return out
}

func nameTaken(decks []Deck, name string) bool {
	for _, d := range decks {
		if d.Name == name {
			return true
		}
	}
	return false
}

// decodeSlots accepts null, a bare instance id, or a unit object carrying api_id
func decodeSlots(raw []json.RawMessage) ([]Slot, error) {
	slots := make([]Slot, 0, len(raw))
	for i, r := range raw {
		s, err := decodeSlot(r)
		if err != nil {
			return nil, shared.NewValidationError(fmt.Sprintf("ships[%d]", i), err.Error())
		}
		slots = append(slots, s)
	}
	return slots, nil
}

func decodeSlot(raw json.RawMessage) (Slot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty, nil
	}
	if trimmed[0] == '{' {
		var unit struct {
			ID *int `json:"api_id"`
		}
		if err := json.Unmarshal(trimmed, &unit); err != nil {
			return Empty, err
		}
		if unit.ID == nil {
			return Empty, nil
		}
		return clampSlot(*unit.ID), nil
	}
	var id int
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return Empty, fmt.Errorf("slot must be null, an id or a unit object: %w", err)
	}
	return clampSlot(id), nil
}

func clampSlot(id int) Slot {
	if id <= 0 {
		return Empty
	}
	return Slot(id)
}
