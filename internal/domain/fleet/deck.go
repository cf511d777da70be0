package fleet

import (
	"errors"
	"fmt"
)

// Sentinel errors for collection invariants. They are wrapped in
// *shared.ConflictError so callers can use errors.Is.
var (
	ErrLastDeck          = errors.New("cannot remove the last deck of a set")
	ErrLastSet           = errors.New("cannot delete the last fleet set")
	ErrDuplicateDeckName = errors.New("deck name is already used in this set")
	ErrShapeMismatch     = errors.New("slot toggle only applies to standard and extended decks")
	ErrDeckNotFound      = errors.New("deck does not exist")
	ErrSetNotFound       = errors.New("fleet set does not exist")
)

// Deck is a named formation inside a fleet set
type Deck struct {
	Name  string
	Fleet Formation
}

// NewDeck creates a deck with an empty standard formation
func NewDeck(name string) Deck {
	return Deck{Name: name, Fleet: Standard{}}
}

// DefaultDeckName is the generated name of the n-th deck (1-based)
func DefaultDeckName(n int) string {
	return fmt.Sprintf("Fleet %d", n)
}

// Equal reports structural equality (name and every slot)
func (d Deck) Equal(other Deck) bool {
	return d.Name == other.Name && d.Fleet == other.Fleet
}

// Coordinate addresses one slot of one deck in the active set
type Coordinate struct {
	Deck    int
	Section Section
	Slot    int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("deck %d %s/%d", c.Deck, c.Section, c.Slot)
}

func decksEqual(a, b []Deck) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func copyDecks(decks []Deck) []Deck {
	return append([]Deck(nil), decks...)
}

func nextDeckName(decks []Deck) string {
	used := make(map[string]bool, len(decks))
	for _, d := range decks {
		used[d.Name] = true
	}
	for n := len(decks) + 1; ; n++ {
		if name := DefaultDeckName(n); !used[name] {
			return name
		}
	}
}
