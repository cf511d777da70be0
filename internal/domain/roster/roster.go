package roster

import (
	"fmt"
	"sort"
)

// Roster is the in-memory list of owned units, loaded once per session.
// It is a value: Replace returns a new roster and never mutates the receiver.
type Roster struct {
	units []Unit
	index map[int]int
}

// New builds a roster from a unit list. When two units share an instance id the
// first one wins the index slot.
func New(units []Unit) Roster {
	r := Roster{
		units: append([]Unit(nil), units...),
		index: make(map[int]int, len(units)),
	}
	for i, u := range r.units {
		if _, exists := r.index[u.InstanceID]; !exists {
			r.index[u.InstanceID] = i
		}
	}
	return r
}

// Units returns a copy of the roster in import order
func (r Roster) Units() []Unit {
	return append([]Unit(nil), r.units...)
}

// Len returns the number of owned units
func (r Roster) Len() int {
	return len(r.units)
}

// Find resolves an instance id
func (r Roster) Find(instanceID int) (Unit, bool) {
	i, ok := r.index[instanceID]
	if !ok {
		return Unit{}, false
	}
	return r.units[i], true
}

// Replace swaps the whole roster (re-import refreshes levels and stats)
func (r Roster) Replace(units []Unit) Roster {
	return New(units)
}

// SortMode selects the roster list ordering
type SortMode string

const (
	SortByLevel    SortMode = "lv"
	SortByCategory SortMode = "stype"
	SortByID       SortMode = "id"
)

// ParseSortMode validates a sort mode name
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case SortByLevel, SortByCategory, SortByID:
		return m, nil
	}
	return "", fmt.Errorf("unknown sort mode %q (want lv, stype or id)", s)
}

// CategoryOf resolves a reference id to its category id (0 when unknown)
type CategoryOf func(referenceID int) int

// Sort orders units in place.
//
//   - lv:    level descending, then reference id ascending
//   - stype: category ascending, then level descending
//   - id:    reference id ascending
func Sort(units []Unit, mode SortMode, categoryOf CategoryOf) {
	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i], units[j]
		switch mode {
		case SortByCategory:
			ca, cb := categoryOf(a.ReferenceID), categoryOf(b.ReferenceID)
			if ca != cb {
				return ca < cb
			}
			return a.Level > b.Level
		case SortByID:
			return a.ReferenceID < b.ReferenceID
		default:
			if a.Level != b.Level {
				return a.Level > b.Level
			}
			return a.ReferenceID < b.ReferenceID
		}
	})
}
