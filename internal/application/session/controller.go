package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kantai-tool/fleetdeck/internal/domain/bonus"
	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/category"
	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/roster"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// Controller orchestrates the engines for one user session
type Controller struct {
	gateway Gateway
	confirm shared.Confirmer
	logger  *zap.Logger
}

// NewController creates a session controller. A nil logger discards output.
func NewController(gateway Gateway, confirm shared.Confirmer, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gateway: gateway,
		confirm: confirm,
		logger:  logger,
	}
}

// Load fetches every document and applies each one independently. A failed
// document keeps its prior state; all failures are returned joined.
func (c *Controller) Load(ctx context.Context, st State) (State, error) {
	var errs []error
	for _, kind := range storage.Kinds() {
		data, err := c.gateway.Load(ctx, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", kind, err))
			continue
		}
		next, err := c.apply(st, kind, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", kind, err))
			continue
		}
		st = next
		c.logger.Info("document loaded", zap.String("kind", kind.String()), zap.Int("bytes", len(data)))
	}
	return st, errors.Join(errs...)
}

func (c *Controller) apply(st State, kind storage.Kind, data []byte) (State, error) {
	switch kind {
	case storage.KindRoster:
		units, err := roster.DecodeStored(data)
		if err != nil {
			return st, err
		}
		st.Roster = roster.New(units)
	case storage.KindFormations:
		w, err := fleet.LoadWorkspace(data, st.Fleets.Active())
		if err != nil {
			return st, err
		}
		st.Fleets = w
		st = st.clampDeck()
	case storage.KindBonus:
		b, err := bonus.Decode(data)
		if err != nil {
			return st, err
		}
		st.Bonus = b
	case storage.KindCatalog:
		st.Catalog = catalog.Load(data)
	case storage.KindBuckets:
		st.Buckets = category.Decode(data)
		if st.SelectedBucket != "" && !contains(st.Buckets.Names(), st.SelectedBucket) {
			st.SelectedBucket = ""
		}
	}
	return st, nil
}

// Drop applies a completed drag. Catalog payloads dropped on a bonus group in
// tagging mode tag the unit type; roster payloads dropped on a slot assign the
// unit. Everything else, including unparseable ids, is logged and ignored.
func (c *Controller) Drop(ctx context.Context, st State, activeID, overID string) (State, fleet.Outcome) {
	payload, err := dnd.ParsePayload(activeID)
	if err != nil {
		c.logger.Debug("ignored drop", zap.String("active", activeID), zap.String("over", overID), zap.Error(err))
		return st, fleet.OutcomeRejected
	}
	target, err := dnd.ParseTarget(overID)
	if err != nil {
		c.logger.Debug("ignored drop", zap.String("active", activeID), zap.String("over", overID), zap.Error(err))
		return st, fleet.OutcomeRejected
	}

	switch {
	case payload.Kind == dnd.PayloadCatalog && target.Kind == dnd.TargetBonusGroup && st.Mode == ModeTagging:
		next, err := st.Bonus.AddMember(target.GroupID, payload.ID)
		if err != nil {
			c.logger.Debug("ignored bonus drop", zap.String("group", target.GroupID), zap.Error(err))
			return st, fleet.OutcomeRejected
		}
		st.Bonus = next
		return st, fleet.OutcomeApplied

	case payload.Kind == dnd.PayloadUnit && target.Kind == dnd.TargetSlot:
		unit, ok := st.Roster.Find(payload.ID)
		if !ok {
			c.logger.Debug("ignored drop of unknown unit", zap.Int("instance_id", payload.ID))
			return st, fleet.OutcomeRejected
		}
		next, outcome, err := st.Fleets.Assign(ctx, fleet.AssignRequest{
			InstanceID: unit.InstanceID,
			UnitName:   st.Catalog.Name(unit.ReferenceID),
			To:         target.Slot,
		}, c.confirm)
		if err != nil {
			c.logger.Debug("ignored slot drop", zap.String("over", overID), zap.Error(err))
			return st, fleet.OutcomeRejected
		}
		st.Fleets = next
		return st, outcome
	}

	c.logger.Debug("ignored drop", zap.String("active", activeID), zap.String("over", overID), zap.String("mode", string(st.Mode)))
	return st, fleet.OutcomeRejected
}

// Press starts a pointer gesture. Roster units already placed in the active
// set's working decks cannot be picked up from the roster.
func (c *Controller) Press(st State, sensor *dnd.Sensor, activeID string, at dnd.Point) bool {
	sensor.Disabled = func(id string) bool {
		return st.Mode == ModeFormation && usedInActiveSet(st, id)
	}
	return sensor.Press(activeID, at)
}

func usedInActiveSet(st State, activeID string) bool {
	payload, err := dnd.ParsePayload(activeID)
	if err != nil || payload.Kind != dnd.PayloadUnit {
		return false
	}
	loc, ok := st.Fleets.Locate(payload.ID)
	return ok && loc.InActiveSet
}

// Release ends a pointer gesture and applies the drop, if the sensor produced one
func (c *Controller) Release(ctx context.Context, st State, sensor *dnd.Sensor, overID string) (State, fleet.Outcome) {
	drop, ok := sensor.Release(overID)
	if !ok {
		return st, fleet.OutcomeUnchanged
	}
	return c.Drop(ctx, st, drop.ActiveID, drop.OverID)
}

// --- Decks ---

// RemoveUnit empties a slot
func (c *Controller) RemoveUnit(st State, at fleet.Coordinate) (State, error) {
	next, err := st.Fleets.Remove(at)
	if err != nil {
		return st, err
	}
	st.Fleets = next
	return st, nil
}

// ChangeShape converts a deck to another formation shape
func (c *Controller) ChangeShape(ctx context.Context, st State, deck int, shape fleet.Shape) (State, fleet.Outcome, error) {
	next, outcome, err := st.Fleets.ChangeShape(ctx, deck, shape, c.confirm)
	if err != nil {
		return st, outcome, err
	}
	st.Fleets = next
	return st, outcome, nil
}

// AddDeck appends a deck and makes it the current one
func (c *Controller) AddDeck(st State) State {
	next, index := st.Fleets.AddDeck()
	st.Fleets = next
	st.CurrentDeck = index
	return st
}

// RemoveDeck deletes a deck after confirmation
func (c *Controller) RemoveDeck(ctx context.Context, st State, index int) (State, fleet.Outcome, error) {
	next, outcome, err := st.Fleets.RemoveDeck(ctx, index, c.confirm)
	if err != nil {
		return st, outcome, err
	}
	st.Fleets = next
	return st.clampDeck(), outcome, nil
}

// RenameDeck renames a deck of the active set
func (c *Controller) RenameDeck(st State, index int, name string) (State, error) {
	next, err := st.Fleets.RenameDeck(index, name)
	if err != nil {
		return st, err
	}
	st.Fleets = next
	return st, nil
}

// AddSlot extends a standard deck to seven slots
func (c *Controller) AddSlot(st State, index int) (State, error) {
	next, err := st.Fleets.AddSlot(index)
	if err != nil {
		return st, err
	}
	st.Fleets = next
	return st, nil
}

// RemoveSlot shrinks an extended deck back to six slots
func (c *Controller) RemoveSlot(ctx context.Context, st State, index int) (State, fleet.Outcome, error) {
	next, outcome, err := st.Fleets.RemoveSlot(ctx, index, c.confirm)
	if err != nil {
		return st, outcome, err
	}
	st.Fleets = next
	return st, outcome, nil
}

// SelectDeck changes the current deck
func (c *Controller) SelectDeck(st State, index int) (State, error) {
	if _, ok := st.Fleets.Deck(index); !ok {
		return st, shared.NewConflictError(fmt.Sprintf("deck %d", index), fleet.ErrDeckNotFound)
	}
	st.CurrentDeck = index
	return st, nil
}

// persistFleets writes every saved set; on failure the prior state is kept
func (c *Controller) persistFleets(ctx context.Context, prior, next State) (State, error) {
	data, err := next.Fleets.Encode()
	if err != nil {
		return prior, fmt.Errorf("failed to encode fleet sets: %w", err)
	}
	if err := c.gateway.Save(ctx, storage.KindFormations, data); err != nil {
		return prior, fmt.Errorf("failed to save fleet sets: %w", err)
	}
	return next, nil
}

// SaveDecks snapshots the working decks into the active set and persists all sets
func (c *Controller) SaveDecks(ctx context.Context, st State) (State, error) {
	next := st
	next.Fleets = st.Fleets.SaveActive()
	return c.persistFleets(ctx, st, next)
}

// SaveAs stores the working decks under a new set name and persists
func (c *Controller) SaveAs(ctx context.Context, st State, name string) (State, fleet.Outcome, error) {
	w, outcome, err := st.Fleets.SaveAs(ctx, name, c.confirm)
	if err != nil || outcome != fleet.OutcomeApplied {
		return st, outcome, err
	}
	next := st
	next.Fleets = w
	next, err = c.persistFleets(ctx, st, next)
	return next, outcome, err
}

// DeleteActive deletes the active set and persists
func (c *Controller) DeleteActive(ctx context.Context, st State) (State, fleet.Outcome, error) {
	w, outcome, err := st.Fleets.DeleteActive(ctx, c.confirm)
	if err != nil || outcome != fleet.OutcomeApplied {
		return st, outcome, err
	}
	next := st
	next.Fleets = w
	next.CurrentDeck = 0
	next, err = c.persistFleets(ctx, st, next)
	return next, outcome, err
}

// SwitchActive activates another set, discarding unsaved changes after confirmation
func (c *Controller) SwitchActive(ctx context.Context, st State, name string) (State, fleet.Outcome, error) {
	w, outcome, err := st.Fleets.SwitchActive(ctx, name, c.confirm)
	if err != nil || outcome != fleet.OutcomeApplied {
		return st, outcome, err
	}
	st.Fleets = w
	st.CurrentDeck = 0
	return st, outcome, nil
}

// --- Imports ---

// ImportRoster parses a pasted roster, saves it, then applies it. A roster whose
// ids had to be synthesized no longer matches existing decks, so the working
// decks are reset after confirmation.
func (c *Controller) ImportRoster(ctx context.Context, st State, text string) (State, fleet.Outcome, error) {
	result, err := roster.ParseImport(text)
	if err != nil {
		return st, fleet.OutcomeRejected, err
	}

	if result.IDsSynthesized {
		ok := c.confirm.Confirm(ctx, shared.Prompt{
			Kind:    shared.PromptResetDecks,
			Message: "This roster has no instance ids. Ids will be generated and the current decks will be reset. Continue?",
		})
		if !ok {
			return st, fleet.OutcomeDeclined, nil
		}
	}

	data, err := json.Marshal(result.Units)
	if err != nil {
		return st, fleet.OutcomeRejected, fmt.Errorf("failed to encode roster: %w", err)
	}
	if err := c.gateway.Save(ctx, storage.KindRoster, data); err != nil {
		return st, fleet.OutcomeRejected, fmt.Errorf("failed to save roster: %w", err)
	}

	st.Roster = roster.New(result.Units)
	if result.IDsSynthesized {
		st.Fleets = st.Fleets.ResetWorking()
		st.CurrentDeck = 0
	}
	c.logger.Info("roster imported", zap.Int("units", len(result.Units)), zap.Bool("ids_synthesized", result.IDsSynthesized))
	return st, fleet.OutcomeApplied, nil
}

// ImportCatalog uploads vendor master data and reloads the normalized catalog
func (c *Controller) ImportCatalog(ctx context.Context, st State, text string) (State, error) {
	body, err := json.Marshal(map[string]string{"data": text})
	if err != nil {
		return st, fmt.Errorf("failed to encode master upload: %w", err)
	}
	if err := c.gateway.Save(ctx, storage.KindCatalog, body); err != nil {
		return st, fmt.Errorf("failed to save master data: %w", err)
	}
	stored, err := c.gateway.Load(ctx, storage.KindCatalog)
	if err != nil {
		return st, fmt.Errorf("failed to reload master data: %w", err)
	}
	st.Catalog = catalog.Load(stored)
	c.logger.Info("catalog imported", zap.Int("entries", st.Catalog.Len()))
	return st, nil
}

// --- Bonus ---

// AddBonusGroup appends an empty group
func (c *Controller) AddBonusGroup(st State) (State, string) {
	next, id := st.Bonus.AddGroup()
	st.Bonus = next
	return st, id
}

// RemoveBonusGroup deletes a group after confirmation
func (c *Controller) RemoveBonusGroup(ctx context.Context, st State, index int) (State, bool, error) {
	next, removed, err := st.Bonus.RemoveGroup(ctx, index, c.confirm)
	if err != nil {
		return st, false, err
	}
	st.Bonus = next
	return st, removed, nil
}

// SetBonusText edits a group's note
func (c *Controller) SetBonusText(st State, index int, text string) (State, error) {
	next, err := st.Bonus.SetGroupText(index, text)
	if err != nil {
		return st, err
	}
	st.Bonus = next
	return st, nil
}

// RemoveBonusMember untags a unit type from a group
func (c *Controller) RemoveBonusMember(st State, groupID string, referenceID int) (State, error) {
	next, err := st.Bonus.RemoveMember(groupID, referenceID)
	if err != nil {
		return st, err
	}
	st.Bonus = next
	return st, nil
}

// SaveBonus persists the non-empty groups
func (c *Controller) SaveBonus(ctx context.Context, st State) error {
	data, err := st.Bonus.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode bonus groups: %w", err)
	}
	if err := c.gateway.Save(ctx, storage.KindBonus, data); err != nil {
		return fmt.Errorf("failed to save bonus groups: %w", err)
	}
	return nil
}

// ExportBonus renders the exchange file for the non-empty groups
func (c *Controller) ExportBonus(st State) ([]byte, error) {
	return json.MarshalIndent(st.Bonus.Export(), "", "  ")
}

// ImportBonus replaces the board from an exchange file and reports how many
// distinct unit types are tagged
func (c *Controller) ImportBonus(st State, data []byte) (State, int, error) {
	b, err := bonus.DecodeFile(data)
	if err != nil {
		return st, 0, err
	}
	st.Bonus = b
	return st, b.MemberCount(), nil
}

// --- Buckets ---

// SelectBucket filters the roster and catalog views; empty selects everything
func (c *Controller) SelectBucket(st State, name string) (State, error) {
	if name != "" && !contains(st.Buckets.Names(), name) {
		return st, shared.NewValidationError("bucket", fmt.Sprintf("unknown bucket %q", name))
	}
	st.SelectedBucket = name
	return st, nil
}

// EditBuckets applies a bucket edit; the selection is cleared if its bucket disappeared
func (c *Controller) EditBuckets(st State, edit func(category.Config) (category.Config, error)) (State, error) {
	next, err := edit(st.Buckets)
	if err != nil {
		return st, err
	}
	st.Buckets = next
	if st.SelectedBucket != "" && !contains(next.Names(), st.SelectedBucket) {
		st.SelectedBucket = ""
	}
	return st, nil
}

func (c *Controller) AddBucket(st State, name string) (State, error) {
	return c.EditBuckets(st, func(cfg category.Config) (category.Config, error) { return cfg.AddBucket(name) })
}

func (c *Controller) RenameBucket(st State, index int, name string) (State, error) {
	return c.EditBuckets(st, func(cfg category.Config) (category.Config, error) { return cfg.RenameBucket(index, name) })
}

func (c *Controller) SetBucketCategories(st State, index int, ids []int) (State, error) {
	return c.EditBuckets(st, func(cfg category.Config) (category.Config, error) { return cfg.SetCategories(index, ids) })
}

func (c *Controller) RemoveBucket(st State, index int) (State, error) {
	return c.EditBuckets(st, func(cfg category.Config) (category.Config, error) { return cfg.RemoveBucket(index) })
}

// SaveBuckets validates and persists the bucket configuration
func (c *Controller) SaveBuckets(ctx context.Context, st State) error {
	if err := st.Buckets.Validate(); err != nil {
		return err
	}
	data, err := st.Buckets.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode buckets: %w", err)
	}
	if err := c.gateway.Save(ctx, storage.KindBuckets, data); err != nil {
		return fmt.Errorf("failed to save buckets: %w", err)
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
