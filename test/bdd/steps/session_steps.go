package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/bonus"
	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/test/helpers"
)

type sessionContext struct {
	gateway    *helpers.MockGateway
	confirmer  *helpers.MockConfirmer
	controller *session.Controller
	state      session.State
	outcome    fleet.Outcome
	err        error
	exported   []byte
}

func (sc *sessionContext) reset() {
	sc.gateway = helpers.NewMockGateway()
	sc.confirmer = helpers.NewMockConfirmer(true)
	sc.controller = session.NewController(sc.gateway, sc.confirmer, zap.NewNop())
	sc.state = session.NewState()
	sc.outcome = ""
	sc.err = nil
	sc.exported = nil
}

// --- Given ---

func (sc *sessionContext) theCatalog(table *godog.Table) error {
	type unit struct {
		ID     int    `json:"api_id"`
		Name   string `json:"api_name"`
		SType  int    `json:"api_stype"`
		SortNo int    `json:"api_sortno"`
	}
	var units []unit
	for i, rec := range tableRecords(table) {
		id, err := intField(rec, "ref")
		if err != nil {
			return err
		}
		stype, err := intField(rec, "stype")
		if err != nil {
			return err
		}
		units = append(units, unit{ID: id, Name: rec["name"], SType: stype, SortNo: i + 1})
	}
	data, err := json.Marshal(map[string]interface{}{"api_mst_ship": units, "api_mst_stype": []interface{}{}})
	if err != nil {
		return err
	}
	sc.gateway.Put(storage.KindCatalog, data)
	return nil
}

func (sc *sessionContext) theRoster(table *godog.Table) error {
	type unit struct {
		InstanceID  int `json:"api_id"`
		ReferenceID int `json:"api_ship_id"`
		Level       int `json:"api_lv"`
	}
	var units []unit
	for _, rec := range tableRecords(table) {
		var u unit
		var err error
		if u.InstanceID, err = intField(rec, "id"); err != nil {
			return err
		}
		if u.ReferenceID, err = intField(rec, "ref"); err != nil {
			return err
		}
		if u.Level, err = intField(rec, "level"); err != nil {
			return err
		}
		units = append(units, u)
	}
	data, err := json.Marshal(units)
	if err != nil {
		return err
	}
	sc.gateway.Put(storage.KindRoster, data)
	return nil
}

func (sc *sessionContext) theStoredDocument(kind string, doc *godog.DocString) error {
	sc.gateway.Put(storage.Kind(kind), []byte(doc.Content))
	return nil
}

func (sc *sessionContext) theUserAnswersToConfirmations(answer string) error {
	sc.confirmer.SetAnswer(answer == "yes")
	return nil
}

func (sc *sessionContext) theSessionIsLoaded() error {
	sc.state, sc.err = sc.controller.Load(context.Background(), sc.state)
	sc.confirmer.Reset()
	return sc.err
}

// --- Decks ---

func coordinate(deck, slot int, escort bool) fleet.Coordinate {
	section := fleet.SectionMain
	if escort {
		section = fleet.SectionEscort
	}
	return fleet.Coordinate{Deck: deck - 1, Section: section, Slot: slot - 1}
}

func (sc *sessionContext) iDropUnitOnDeckSlot(unit, deck int, escort string, slot int) error {
	sc.state, sc.outcome = sc.controller.Drop(context.Background(), sc.state, dnd.UnitID(unit), dnd.SlotID(coordinate(deck, slot, escort != "")))
	return nil
}

func (sc *sessionContext) iDropOnto(active, over string) error {
	sc.state, sc.outcome = sc.controller.Drop(context.Background(), sc.state, active, over)
	return nil
}

func (sc *sessionContext) iAddADeck() error {
	sc.state = sc.controller.AddDeck(sc.state)
	return nil
}

func (sc *sessionContext) iChangeDeckTo(deck int, shape string) error {
	s, err := fleet.ParseShape(shape)
	if err != nil {
		return err
	}
	sc.state, sc.outcome, sc.err = sc.controller.ChangeShape(context.Background(), sc.state, deck-1, s)
	return nil
}

func (sc *sessionContext) iSaveTheSetAs(name string) error {
	sc.state, sc.outcome, sc.err = sc.controller.SaveAs(context.Background(), sc.state, name)
	return nil
}

func (sc *sessionContext) iSwitchToSet(name string) error {
	sc.state, sc.outcome, sc.err = sc.controller.SwitchActive(context.Background(), sc.state, name)
	return nil
}

func (sc *sessionContext) iDeleteTheActiveSet() error {
	sc.state, sc.outcome, sc.err = sc.controller.DeleteActive(context.Background(), sc.state)
	return nil
}

func (sc *sessionContext) iSaveTheDecks() error {
	sc.state, sc.err = sc.controller.SaveDecks(context.Background(), sc.state)
	return sc.err
}

func (sc *sessionContext) deckSlotHolds(deck int, escort string, slot int, want string) error {
	d, ok := sc.state.Fleets.Deck(deck - 1)
	if !ok {
		return fmt.Errorf("deck %d does not exist", deck)
	}
	sections := d.Fleet.Sections()
	at := coordinate(deck, slot, escort != "")
	if int(at.Section) >= len(sections) || at.Slot >= len(sections[at.Section]) {
		return fmt.Errorf("deck %d has no slot %s", deck, at)
	}
	s := sections[at.Section][at.Slot]
	got := "empty"
	if !s.IsEmpty() {
		got = fmt.Sprintf("unit %d", s.InstanceID())
	}
	if got != want {
		return fmt.Errorf("deck %d slot %d: expected %s, got %s", deck, slot, want, got)
	}
	return nil
}

func (sc *sessionContext) deckHasShape(deck int, shape string) error {
	d, ok := sc.state.Fleets.Deck(deck - 1)
	if !ok {
		return fmt.Errorf("deck %d does not exist", deck)
	}
	if string(d.Fleet.Shape()) != shape {
		return fmt.Errorf("expected deck %d to be %s, got %s", deck, shape, d.Fleet.Shape())
	}
	return nil
}

func (sc *sessionContext) theOutcomeShouldBe(want string) error {
	if string(sc.outcome) != want {
		return fmt.Errorf("expected outcome %s, got %s (err: %v)", want, sc.outcome, sc.err)
	}
	return nil
}

func (sc *sessionContext) thePromptShouldHaveBeenShown(kind string) error {
	for _, p := range sc.confirmer.Prompts() {
		if string(p.Kind) == kind {
			return nil
		}
	}
	return fmt.Errorf("no %s prompt was shown (got %v)", kind, sc.confirmer.Prompts())
}

func (sc *sessionContext) noPromptShouldHaveBeenShown() error {
	if prompts := sc.confirmer.Prompts(); len(prompts) > 0 {
		return fmt.Errorf("expected no prompts, got %v", prompts)
	}
	return nil
}

func (sc *sessionContext) theActiveSetShouldBe(name string) error {
	if got := sc.state.Fleets.Active(); got != name {
		return fmt.Errorf("expected active set %q, got %q", name, got)
	}
	return nil
}

func (sc *sessionContext) theSetsShouldBe(names string) error {
	got := strings.Join(sc.state.Fleets.SetNames(), ", ")
	if got != names {
		return fmt.Errorf("expected sets %q, got %q", names, got)
	}
	return nil
}

func (sc *sessionContext) theStoredDecksShouldContainSet(name string) error {
	data, ok := sc.gateway.Document(storage.KindFormations)
	if !ok {
		return fmt.Errorf("decks were never saved")
	}
	var sets map[string]json.RawMessage
	if err := json.Unmarshal(data, &sets); err != nil {
		return fmt.Errorf("stored decks are not a set map: %w", err)
	}
	if _, ok := sets[name]; !ok {
		return fmt.Errorf("stored decks have no set %q: %s", name, data)
	}
	return nil
}

func (sc *sessionContext) theOperationShouldFailWith(want string) error {
	if sc.err == nil {
		return fmt.Errorf("expected an error containing %q", want)
	}
	if !strings.Contains(sc.err.Error(), want) {
		return fmt.Errorf("expected error containing %q, got %v", want, sc.err)
	}
	return nil
}

// --- Bonus ---

func (sc *sessionContext) iSwitchToMode(mode string) error {
	m, err := session.ParseViewMode(mode)
	if err != nil {
		return err
	}
	sc.state = sc.state.WithMode(m)
	return nil
}

func (sc *sessionContext) groupID(n int) (string, error) {
	groups := sc.state.Bonus.Groups()
	if n < 1 || n > len(groups) {
		return "", fmt.Errorf("no bonus group %d (have %d)", n, len(groups))
	}
	return groups[n-1].ID, nil
}

func (sc *sessionContext) iDropCatalogEntryOnGroup(ref, group int) error {
	id, err := sc.groupID(group)
	if err != nil {
		return err
	}
	sc.state, sc.outcome = sc.controller.Drop(context.Background(), sc.state, dnd.CatalogID(ref), dnd.GroupID(id))
	return nil
}

func (sc *sessionContext) iSetTheTextOfGroupTo(group int, text string) error {
	sc.state, sc.err = sc.controller.SetBonusText(sc.state, group-1, text)
	return sc.err
}

func (sc *sessionContext) iAddABonusGroup() error {
	sc.state, _ = sc.controller.AddBonusGroup(sc.state)
	return nil
}

func (sc *sessionContext) iSaveTheBonusGroups() error {
	sc.err = sc.controller.SaveBonus(context.Background(), sc.state)
	return sc.err
}

func (sc *sessionContext) iExportTheBonusGroups() error {
	sc.exported, sc.err = sc.controller.ExportBonus(sc.state)
	return sc.err
}

func (sc *sessionContext) iImport(doc *godog.DocString) error {
	sc.state, _, sc.err = sc.controller.ImportBonus(sc.state, []byte(doc.Content))
	return nil
}

func (sc *sessionContext) thereShouldBeBonusGroups(n int) error {
	if got := sc.state.Bonus.Len(); got != n {
		return fmt.Errorf("expected %d bonus groups, got %d", n, got)
	}
	return nil
}

func (sc *sessionContext) unitTypeShouldShowBonus(ref int, text string) error {
	if got := sc.state.Bonus.Map()[ref]; got != text {
		return fmt.Errorf("expected unit type %d to show %q, got %q", ref, text, got)
	}
	return nil
}

func (sc *sessionContext) theExportShouldBe(doc *godog.DocString) error {
	var got, want []bonus.Entry
	if err := json.Unmarshal(sc.exported, &got); err != nil {
		return fmt.Errorf("export is not an entry list: %w", err)
	}
	if err := json.Unmarshal([]byte(doc.Content), &want); err != nil {
		return err
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("expected export %v, got %v", want, got)
	}
	return nil
}

func (sc *sessionContext) theStoredBonusDocumentShouldBe(doc *godog.DocString) error {
	data, ok := sc.gateway.Document(storage.KindBonus)
	if !ok {
		return fmt.Errorf("bonus groups were never saved")
	}
	var got, want interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc.Content), &want); err != nil {
		return err
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("expected stored bonus %s, got %s", doc.Content, data)
	}
	return nil
}

// InitializeSessionScenario registers the formation and bonus steps
func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	sc := &sessionContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	ctx.Step(`^the catalog:$`, sc.theCatalog)
	ctx.Step(`^the roster:$`, sc.theRoster)
	ctx.Step(`^the stored "([^"]*)" document:$`, sc.theStoredDocument)
	ctx.Step(`^the user answers "(yes|no)" to confirmations$`, sc.theUserAnswersToConfirmations)
	ctx.Step(`^the session is loaded$`, sc.theSessionIsLoaded)

	ctx.Step(`^I drop unit (\d+) on deck (\d+) (escort )?slot (\d+)$`, sc.iDropUnitOnDeckSlot)
	ctx.Step(`^I drop "([^"]*)" onto "([^"]*)"$`, sc.iDropOnto)
	ctx.Step(`^I add a deck$`, sc.iAddADeck)
	ctx.Step(`^I change deck (\d+) to "([^"]*)"$`, sc.iChangeDeckTo)
	ctx.Step(`^I save the set as "([^"]*)"$`, sc.iSaveTheSetAs)
	ctx.Step(`^I switch to set "([^"]*)"$`, sc.iSwitchToSet)
	ctx.Step(`^I delete the active set$`, sc.iDeleteTheActiveSet)
	ctx.Step(`^I save the decks$`, sc.iSaveTheDecks)
	ctx.Step(`^deck (\d+) (escort )?slot (\d+) should hold (empty|unit \d+)$`, sc.deckSlotHolds)
	ctx.Step(`^deck (\d+) should be "([^"]*)"$`, sc.deckHasShape)
	ctx.Step(`^the outcome should be "([^"]*)"$`, sc.theOutcomeShouldBe)
	ctx.Step(`^a "([^"]*)" prompt should have been shown$`, sc.thePromptShouldHaveBeenShown)
	ctx.Step(`^no prompt should have been shown$`, sc.noPromptShouldHaveBeenShown)
	ctx.Step(`^the active set should be "([^"]*)"$`, sc.theActiveSetShouldBe)
	ctx.Step(`^the sets should be "([^"]*)"$`, sc.theSetsShouldBe)
	ctx.Step(`^the stored decks should contain set "([^"]*)"$`, sc.theStoredDecksShouldContainSet)
	ctx.Step(`^the operation should fail with "([^"]*)"$`, sc.theOperationShouldFailWith)

	ctx.Step(`^I switch to "([^"]*)" mode$`, sc.iSwitchToMode)
	ctx.Step(`^I drop catalog entry (\d+) on bonus group (\d+)$`, sc.iDropCatalogEntryOnGroup)
	ctx.Step(`^I set the text of bonus group (\d+) to "([^"]*)"$`, sc.iSetTheTextOfGroupTo)
	ctx.Step(`^I add a bonus group$`, sc.iAddABonusGroup)
	ctx.Step(`^I save the bonus groups$`, sc.iSaveTheBonusGroups)
	ctx.Step(`^I export the bonus groups$`, sc.iExportTheBonusGroups)
	ctx.Step(`^I import the bonus groups:$`, sc.iImport)
	ctx.Step(`^there should be (\d+) bonus groups?$`, sc.thereShouldBeBonusGroups)
	ctx.Step(`^unit type (\d+) should show bonus "([^"]*)"$`, sc.unitTypeShouldShowBonus)
	ctx.Step(`^the export should be:$`, sc.theExportShouldBe)
	ctx.Step(`^the stored bonus document should be:$`, sc.theStoredBonusDocumentShouldBe)
}
