package fleet

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// DefaultSetName is the key of the set created for new users and legacy payloads
const DefaultSetName = "default"

// Outcome tells the caller what an engine operation did
type Outcome string

const (
	OutcomeInserted   Outcome = "INSERTED"
	OutcomeMoved      Outcome = "MOVED"
	OutcomeDuplicated Outcome = "DUPLICATED"
	OutcomeApplied    Outcome = "APPLIED"
	OutcomeDeclined   Outcome = "DECLINED"
	OutcomeUnchanged  Outcome = "UNCHANGED"
	OutcomeRejected   Outcome = "REJECTED"
)

// Workspace is the complete state of the fleet composition engine.
//
// Invariants:
//   - at least one set exists and the active set is one of them
//   - every set holds at least one deck
//   - saved snapshots and the working decks are never mutated in place;
//     every operation returns a new Workspace
type Workspace struct {
	saved  map[string][]Deck
	active string
	decks  []Deck
}

// NewWorkspace builds a workspace from saved sets. Empty input yields the default
// set with one empty deck; an unknown or empty active name selects the first set by name.
func NewWorkspace(sets map[string][]Deck, active string) Workspace {
	saved := make(map[string][]Deck, len(sets))
	for name, decks := range sets {
		if len(decks) == 0 {
			decks = []Deck{NewDeck(DefaultDeckName(1))}
		}
		saved[name] = copyDecks(decks)
	}
	if len(saved) == 0 {
		saved[DefaultSetName] = []Deck{NewDeck(DefaultDeckName(1))}
	}
	if _, ok := saved[active]; !ok {
		active = sortedNames(saved)[0]
	}
	return Workspace{
		saved:  saved,
		active: active,
		decks:  copyDecks(saved[active]),
	}
}

// DefaultWorkspace is the state of a user without saved formations
func DefaultWorkspace() Workspace {
	return NewWorkspace(nil, "")
}

// Active returns the active set name
func (w Workspace) Active() string {
	return w.active
}

// Decks returns the working decks of the active set
func (w Workspace) Decks() []Deck {
	return copyDecks(w.decks)
}

// Deck returns one working deck
func (w Workspace) Deck(index int) (Deck, bool) {
	if index < 0 || index >= len(w.decks) {
		return Deck{}, false
	}
	return w.decks[index], true
}

// SetNames returns every saved set name in name order
func (w Workspace) SetNames() []string {
	return sortedNames(w.saved)
}

// Saved returns the last-saved snapshot of a set
func (w Workspace) Saved(name string) ([]Deck, bool) {
	decks, ok := w.saved[name]
	return copyDecks(decks), ok
}

// Sets returns every saved snapshot (the document that is persisted)
func (w Workspace) Sets() map[string][]Deck {
	out := make(map[string][]Deck, len(w.saved))
	for name, decks := range w.saved {
		out[name] = copyDecks(decks)
	}
	return out
}

// Dirty reports whether the working decks differ structurally from the active set's snapshot
func (w Workspace) Dirty() bool {
	return !decksEqual(w.decks, w.saved[w.active])
}

func (w Workspace) withDecks(decks []Deck) Workspace {
	return Workspace{saved: w.saved, active: w.active, decks: decks}
}

// Location is where a unit instance was found
type Location struct {
	Set         string
	DeckName    string
	At          Coordinate
	InActiveSet bool // hit is in the working decks of the active set
}

// Locate finds the first slot holding instanceID. The active set's working decks
// are scanned first, then every other saved set in name order. This is the single
// lookup used by assignment and can be swapped for an index if collections grow.
func (w Workspace) Locate(instanceID int) (Location, bool) {
	if loc, ok := locateIn(w.decks, instanceID); ok {
		loc.Set = w.active
		loc.InActiveSet = true
		return loc, true
	}
	for _, name := range sortedNames(w.saved) {
		if name == w.active {
			continue
		}
		if loc, ok := locateIn(w.saved[name], instanceID); ok {
			loc.Set = name
			return loc, true
		}
	}
	return Location{}, false
}

func locateIn(decks []Deck, instanceID int) (Location, bool) {
	for d, deck := range decks {
		for s, slots := range deck.Fleet.Sections() {
			for i, slot := range slots {
				if slot.InstanceID() == instanceID {
					return Location{
						DeckName: deck.Name,
						At:       Coordinate{Deck: d, Section: Section(s), Slot: i},
					}, true
				}
			}
		}
	}
	return Location{}, false
}

// UsedInstanceIDs is the set of instance ids placed in any deck of any loaded set
// (the active set contributes its working decks)
func (w Workspace) UsedInstanceIDs() map[int]bool {
	used := make(map[int]bool)
	collect := func(decks []Deck) {
		for _, deck := range decks {
			for _, slot := range deck.Fleet.Flatten() {
				if !slot.IsEmpty() {
					used[slot.InstanceID()] = true
				}
			}
		}
	}
	collect(w.decks)
	for name, decks := range w.saved {
		if name != w.active {
			collect(decks)
		}
	}
	return used
}

// OccupiedCount counts non-empty slots across the whole collection
func (w Workspace) OccupiedCount() int {
	n := 0
	for _, deck := range w.decks {
		n += Occupied(deck.Fleet)
	}
	for name, decks := range w.saved {
		if name == w.active {
			continue
		}
		for _, deck := range decks {
			n += Occupied(deck.Fleet)
		}
	}
	return n
}

// validate checks a coordinate against the working decks
func (w Workspace) validate(at Coordinate) error {
	if at.Deck < 0 || at.Deck >= len(w.decks) {
		return shared.NewInvalidCoordinateError(at.Deck, int(at.Section), at.Slot, "deck does not exist")
	}
	if _, ok := slotAt(w.decks[at.Deck].Fleet, at.Section, at.Slot); !ok {
		return shared.NewInvalidCoordinateError(at.Deck, int(at.Section), at.Slot,
			fmt.Sprintf("no such slot in a %s formation", w.decks[at.Deck].Fleet.Shape()))
	}
	return nil
}

func (w Workspace) checkDeck(index int) error {
	if index < 0 || index >= len(w.decks) {
		return shared.NewConflictError(fmt.Sprintf("deck %d", index), ErrDeckNotFound)
	}
	return nil
}

func sortedNames(sets map[string][]Deck) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Slot operations ---

// AssignRequest places one roster unit into a slot
type AssignRequest struct {
	InstanceID int
	// UnitName is used in the confirmation text; optional
	UnitName string
	To       Coordinate
}

// Assign places a unit into a slot of the active set.
//
//   - unit already in the same deck: move, no confirmation; an occupied destination swaps into the source
//   - unit in a different deck (any set): confirm, then copy without clearing the source
//   - unit nowhere: insert, silently replacing the slot's previous occupant
//
// Invalid coordinates return *shared.InvalidCoordinateError with the workspace unchanged.
// A declined confirmation returns OutcomeDeclined with the workspace unchanged.
func (w Workspace) Assign(ctx context.Context, req AssignRequest, confirm shared.Confirmer) (Workspace, Outcome, error) {
	if req.InstanceID <= 0 {
		return w, OutcomeRejected, shared.NewValidationError("instance_id", "instance id must be positive")
	}
	if err := w.validate(req.To); err != nil {
		return w, OutcomeRejected, err
	}

	decks := copyDecks(w.decks)
	target := decks[req.To.Deck]
	unit := Slot(req.InstanceID)

	loc, found := w.Locate(req.InstanceID)
	if inTarget, ok := locateIn(decks[req.To.Deck:req.To.Deck+1], req.InstanceID); ok {
		// a duplicated unit already in the target deck moves within it
		inTarget.At.Deck = req.To.Deck
		inTarget.InActiveSet = true
		loc, found = inTarget, true
	}
	switch {
	case found && loc.InActiveSet && loc.At.Deck == req.To.Deck:
		if loc.At == req.To {
			return w, OutcomeMoved, nil
		}
		// the destination's occupant takes the vacated slot so moves keep the count
		displaced, _ := slotAt(target.Fleet, req.To.Section, req.To.Slot)
		f := withSlot(target.Fleet, loc.At.Section, loc.At.Slot, displaced)
		target.Fleet = withSlot(f, req.To.Section, req.To.Slot, unit)
		decks[req.To.Deck] = target
		return w.withDecks(decks), OutcomeMoved, nil

	case found:
		name := req.UnitName
		if name == "" {
			name = fmt.Sprintf("unit #%d", req.InstanceID)
		}
		where := fmt.Sprintf("%q", loc.DeckName)
		if !loc.InActiveSet {
			where = fmt.Sprintf("%q of set %q", loc.DeckName, loc.Set)
		}
		ok := confirm.Confirm(ctx, shared.Prompt{
			Kind:    shared.PromptCrossDeckDuplicate,
			Message: fmt.Sprintf("%s is already placed in %s. Place it in %q as well?", name, where, target.Name),
		})
		if !ok {
			return w, OutcomeDeclined, nil
		}
		target.Fleet = withSlot(target.Fleet, req.To.Section, req.To.Slot, unit)
		decks[req.To.Deck] = target
		return w.withDecks(decks), OutcomeDuplicated, nil

	default:
		target.Fleet = withSlot(target.Fleet, req.To.Section, req.To.Slot, unit)
		decks[req.To.Deck] = target
		return w.withDecks(decks), OutcomeInserted, nil
	}
}

// Remove empties one slot
func (w Workspace) Remove(at Coordinate) (Workspace, error) {
	if err := w.validate(at); err != nil {
		return w, err
	}
	decks := copyDecks(w.decks)
	decks[at.Deck].Fleet = withSlot(decks[at.Deck].Fleet, at.Section, at.Slot, Empty)
	return w.withDecks(decks), nil
}

// --- Deck operations ---

// ChangeShape re-maps a deck into another shape by flattening it (combined: main
// then escort) and refilling the new sections in order. Growing pads with empty
// slots; shrinking that would drop an occupied slot needs confirmation.
func (w Workspace) ChangeShape(ctx context.Context, deck int, shape Shape, confirm shared.Confirmer) (Workspace, Outcome, error) {
	if err := w.checkDeck(deck); err != nil {
		return w, OutcomeRejected, err
	}
	current := w.decks[deck]
	next, dropped := redistribute(current.Fleet.Flatten(), shape)
	if next == current.Fleet {
		return w, OutcomeUnchanged, nil
	}

	lost := 0
	for _, s := range dropped {
		if !s.IsEmpty() {
			lost++
		}
	}
	if lost > 0 {
		ok := confirm.Confirm(ctx, shared.Prompt{
			Kind:    shared.PromptShapeTruncation,
			Message: fmt.Sprintf("Changing %q to %s removes %d placed unit(s). Continue?", current.Name, shape, lost),
		})
		if !ok {
			return w, OutcomeDeclined, nil
		}
	}

	decks := copyDecks(w.decks)
	decks[deck].Fleet = next
	return w.withDecks(decks), OutcomeApplied, nil
}

// AddSlot turns a standard deck into an extended one
func (w Workspace) AddSlot(deck int) (Workspace, error) {
	if err := w.checkDeck(deck); err != nil {
		return w, err
	}
	if w.decks[deck].Fleet.Shape() != ShapeStandard {
		return w, shared.NewConflictError(w.decks[deck].Name, ErrShapeMismatch)
	}
	next, _, err := w.ChangeShape(context.Background(), deck, ShapeExtended, shared.NeverConfirm)
	return next, err
}

// RemoveSlot turns an extended deck back into a standard one, confirming if the
// seventh slot is occupied
func (w Workspace) RemoveSlot(ctx context.Context, deck int, confirm shared.Confirmer) (Workspace, Outcome, error) {
	if err := w.checkDeck(deck); err != nil {
		return w, OutcomeRejected, err
	}
	if w.decks[deck].Fleet.Shape() != ShapeExtended {
		return w, OutcomeRejected, shared.NewConflictError(w.decks[deck].Name, ErrShapeMismatch)
	}
	return w.ChangeShape(ctx, deck, ShapeStandard, confirm)
}

// AddDeck appends an empty standard deck and returns its index
func (w Workspace) AddDeck() (Workspace, int) {
	decks := append(copyDecks(w.decks), NewDeck(nextDeckName(w.decks)))
	return w.withDecks(decks), len(decks) - 1
}

// RemoveDeck deletes a deck after confirmation. The last deck of a set cannot be removed.
func (w Workspace) RemoveDeck(ctx context.Context, index int, confirm shared.Confirmer) (Workspace, Outcome, error) {
	if err := w.checkDeck(index); err != nil {
		return w, OutcomeRejected, err
	}
	if len(w.decks) <= 1 {
		return w, OutcomeRejected, shared.NewConflictError(w.decks[index].Name, ErrLastDeck)
	}
	ok := confirm.Confirm(ctx, shared.Prompt{
		Kind:    shared.PromptRemoveDeck,
		Message: fmt.Sprintf("Remove deck %q?", w.decks[index].Name),
	})
	if !ok {
		return w, OutcomeDeclined, nil
	}
	decks := append(copyDecks(w.decks[:index]), w.decks[index+1:]...)
	return w.withDecks(decks), OutcomeApplied, nil
}

// RenameDeck renames a deck; names are trimmed and must be unique within the set
func (w Workspace) RenameDeck(index int, name string) (Workspace, error) {
	if err := w.checkDeck(index); err != nil {
		return w, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return w, shared.NewValidationError("name", "deck name is required")
	}
	if name == w.decks[index].Name {
		return w, nil
	}
	for i, d := range w.decks {
		if i != index && d.Name == name {
			return w, shared.NewConflictError(name, ErrDuplicateDeckName)
		}
	}
	decks := copyDecks(w.decks)
	decks[index].Name = name
	return w.withDecks(decks), nil
}

// ResetWorking replaces the working decks with a single empty deck. The saved
// snapshots are kept until the next save.
func (w Workspace) ResetWorking() Workspace {
	return w.withDecks([]Deck{NewDeck(DefaultDeckName(1))})
}

// --- Set operations ---

func (w Workspace) savedWith(name string, decks []Deck) map[string][]Deck {
	saved := make(map[string][]Deck, len(w.saved)+1)
	for k, v := range w.saved {
		saved[k] = v
	}
	saved[name] = copyDecks(decks)
	return saved
}

// SaveActive snapshots the working decks as the active set's saved state
func (w Workspace) SaveActive() Workspace {
	return Workspace{
		saved:  w.savedWith(w.active, w.decks),
		active: w.active,
		decks:  copyDecks(w.decks),
	}
}

// SaveAs stores the working decks under a new name and makes it active.
// Overwriting another existing set needs confirmation. The previously active
// set keeps its last-saved snapshot.
func (w Workspace) SaveAs(ctx context.Context, name string, confirm shared.Confirmer) (Workspace, Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return w, OutcomeRejected, shared.NewValidationError("name", "set name is required")
	}
	if name == w.active {
		return w.SaveActive(), OutcomeApplied, nil
	}
	if _, exists := w.saved[name]; exists {
		ok := confirm.Confirm(ctx, shared.Prompt{
			Kind:    shared.PromptOverwriteSet,
			Message: fmt.Sprintf("Fleet set %q already exists. Overwrite it?", name),
		})
		if !ok {
			return w, OutcomeDeclined, nil
		}
	}
	return Workspace{
		saved:  w.savedWith(name, w.decks),
		active: name,
		decks:  copyDecks(w.decks),
	}, OutcomeApplied, nil
}

// DeleteActive removes the active set after confirmation and activates the first
// remaining set by name. The last set cannot be deleted.
func (w Workspace) DeleteActive(ctx context.Context, confirm shared.Confirmer) (Workspace, Outcome, error) {
	if len(w.saved) <= 1 {
		return w, OutcomeRejected, shared.NewConflictError(w.active, ErrLastSet)
	}
	ok := confirm.Confirm(ctx, shared.Prompt{
		Kind:    shared.PromptDeleteSet,
		Message: fmt.Sprintf("Delete fleet set %q?", w.active),
	})
	if !ok {
		return w, OutcomeDeclined, nil
	}
	saved := make(map[string][]Deck, len(w.saved)-1)
	for k, v := range w.saved {
		if k != w.active {
			saved[k] = v
		}
	}
	active := sortedNames(saved)[0]
	return Workspace{saved: saved, active: active, decks: copyDecks(saved[active])}, OutcomeApplied, nil
}

// SwitchActive loads another set's snapshot. Unsaved working changes are
// discarded, after confirmation.
func (w Workspace) SwitchActive(ctx context.Context, name string, confirm shared.Confirmer) (Workspace, Outcome, error) {
	decks, ok := w.saved[name]
	if !ok {
		return w, OutcomeRejected, shared.NewConflictError(name, ErrSetNotFound)
	}
	if name == w.active {
		return w, OutcomeUnchanged, nil
	}
	if w.Dirty() {
		ok := confirm.Confirm(ctx, shared.Prompt{
			Kind:    shared.PromptDiscardChanges,
			Message: fmt.Sprintf("Fleet set %q has unsaved changes. Discard them and switch to %q?", w.active, name),
		})
		if !ok {
			return w, OutcomeDeclined, nil
		}
	}
	return Workspace{saved: w.saved, active: name, decks: copyDecks(decks)}, OutcomeApplied, nil
}
