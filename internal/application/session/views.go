package session

import (
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/domain/category"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/roster"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// RosterRow is one owned unit as listed in the roster panel
type RosterRow struct {
	InstanceID   int    `json:"instance_id" yaml:"instance_id"`
	ReferenceID  int    `json:"reference_id" yaml:"reference_id"`
	Name         string `json:"name" yaml:"name"`
	Level        int    `json:"level" yaml:"level"`
	CategoryName string `json:"category" yaml:"category"`
	Used         bool   `json:"used" yaml:"used"`
	Bonus        string `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// CatalogRow is one playable catalog entry as listed in tagging mode
type CatalogRow struct {
	ReferenceID  int    `json:"reference_id" yaml:"reference_id"`
	Name         string `json:"name" yaml:"name"`
	CategoryName string `json:"category" yaml:"category"`
	Bonus        string `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// SlotView is one rendered formation slot
type SlotView struct {
	Coordinate fleet.Coordinate `json:"-" yaml:"-"`
	InstanceID int              `json:"instance_id,omitempty" yaml:"instance_id,omitempty"`
	Name       string           `json:"name,omitempty" yaml:"name,omitempty"`
	Level      int              `json:"level,omitempty" yaml:"level,omitempty"`
	// Missing marks an instance id that is not in the roster (stale deck)
	Missing bool `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// DeckView is one rendered deck
type DeckView struct {
	Index    int          `json:"index" yaml:"index"`
	Name     string       `json:"name" yaml:"name"`
	Shape    fleet.Shape  `json:"shape" yaml:"shape"`
	Sections [][]SlotView `json:"sections" yaml:"sections"`
}

// RosterView lists the roster filtered by the selected bucket and ordered by the sort mode
func RosterView(st State) []RosterRow {
	used := st.Fleets.UsedInstanceIDs()
	bonusText := st.Bonus.Map()

	units := make([]roster.Unit, 0, st.Roster.Len())
	for _, u := range st.Roster.Units() {
		if category.Matches(st.Buckets, st.SelectedBucket, st.Catalog.CategoryOf(u.ReferenceID)) {
			units = append(units, u)
		}
	}
	roster.Sort(units, st.Sort, st.Catalog.CategoryOf)

	rows := make([]RosterRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, RosterRow{
			InstanceID:   u.InstanceID,
			ReferenceID:  u.ReferenceID,
			Name:         st.Catalog.Name(u.ReferenceID),
			Level:        u.Level,
			CategoryName: st.Catalog.CategoryName(st.Catalog.CategoryOf(u.ReferenceID)),
			Used:         used[u.InstanceID],
			Bonus:        bonusText[u.ReferenceID],
		})
	}
	return rows
}

// CatalogView lists playable catalog entries filtered by the selected bucket
func CatalogView(st State) []CatalogRow {
	bonusText := st.Bonus.Map()
	var rows []CatalogRow
	for _, e := range st.Catalog.Playable() {
		if !category.Matches(st.Buckets, st.SelectedBucket, e.CategoryID) {
			continue
		}
		rows = append(rows, CatalogRow{
			ReferenceID:  e.ReferenceID,
			Name:         e.Name,
			CategoryName: st.Catalog.CategoryName(e.CategoryID),
			Bonus:        bonusText[e.ReferenceID],
		})
	}
	return rows
}

// RenderDeck resolves a working deck's slots against the roster and catalog
func RenderDeck(st State, index int) (DeckView, error) {
	deck, ok := st.Fleets.Deck(index)
	if !ok {
		return DeckView{}, shared.NewConflictError(fmt.Sprintf("deck %d", index), fleet.ErrDeckNotFound)
	}
	view := DeckView{Index: index, Name: deck.Name, Shape: deck.Fleet.Shape()}
	for s, slots := range deck.Fleet.Sections() {
		section := make([]SlotView, len(slots))
		for i, slot := range slots {
			sv := SlotView{Coordinate: fleet.Coordinate{Deck: index, Section: fleet.Section(s), Slot: i}}
			if !slot.IsEmpty() {
				sv.InstanceID = slot.InstanceID()
				if u, found := st.Roster.Find(slot.InstanceID()); found {
					sv.Name = st.Catalog.Name(u.ReferenceID)
					sv.Level = u.Level
				} else {
					sv.Missing = true
				}
			}
			section[i] = sv
		}
		view.Sections = append(view.Sections, section)
	}
	return view, nil
}

// RenderDecks renders every working deck of the active set
func RenderDecks(st State) []DeckView {
	decks := st.Fleets.Decks()
	out := make([]DeckView, 0, len(decks))
	for i := range decks {
		v, _ := RenderDeck(st, i)
		out = append(out, v)
	}
	return out
}

// RosterBuckets returns the bucket names that contain at least one owned unit
func RosterBuckets(st State) []string {
	ids := make([]int, 0, st.Roster.Len())
	for _, u := range st.Roster.Units() {
		ids = append(ids, st.Catalog.CategoryOf(u.ReferenceID))
	}
	return category.Available(st.Buckets, ids)
}
