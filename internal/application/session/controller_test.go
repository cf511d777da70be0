package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/roster"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/test/helpers"
)

const masterDoc = `{
	"api_mst_ship": [
		{"api_id": 1, "api_name": "Mutsuki", "api_stype": 2, "api_sortno": 10},
		{"api_id": 2, "api_name": "Kongou", "api_stype": 9, "api_sortno": 5},
		{"api_id": 1501, "api_name": "Enemy", "api_stype": 2}
	],
	"api_mst_stype": [{"api_id": 2, "api_name": "DD"}, {"api_id": 9, "api_name": "BB"}]
}`

const rosterDoc = `[
	{"api_id": 11, "api_ship_id": 1, "api_lv": 50},
	{"api_id": 12, "api_ship_id": 2, "api_lv": 99},
	{"api_id": 13, "api_ship_id": 1, "api_lv": 70}
]`

type fixture struct {
	gateway    *helpers.MockGateway
	confirmer  *helpers.MockConfirmer
	controller *session.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := helpers.NewMockGateway()
	gw.Put(storage.KindCatalog, []byte(masterDoc))
	gw.Put(storage.KindRoster, []byte(rosterDoc))
	gw.Put(storage.KindBuckets, []byte(`[{"name":"Destroyers","stypes":[2]}]`))
	confirmer := helpers.NewMockConfirmer(true)
	return &fixture{
		gateway:    gw,
		confirmer:  confirmer,
		controller: session.NewController(gw, confirmer, zaptest.NewLogger(t)),
	}
}

func (f *fixture) loaded(t *testing.T) session.State {
	t.Helper()
	st, err := f.controller.Load(context.Background(), session.NewState())
	require.NoError(t, err)
	return st
}

func TestLoad_AppliesEveryDocument(t *testing.T) {
	f := newFixture(t)

	st := f.loaded(t)

	assert.Equal(t, 3, st.Roster.Len())
	assert.Equal(t, 3, st.Catalog.Len())
	assert.Equal(t, []string{"Destroyers", "Other"}, st.Buckets.Names())
	assert.Equal(t, fleet.DefaultSetName, st.Fleets.Active())
	assert.Equal(t, 1, st.Bonus.Len(), "empty bonus document loads a placeholder group")
}

func TestLoad_FailureKeepsPriorStateForThatDocument(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	f.gateway.FailLoad(storage.KindRoster, errors.New("connection refused"))
	f.gateway.Put(storage.KindBuckets, []byte(`[]`))

	next, err := f.controller.Load(context.Background(), st)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ships")
	assert.Equal(t, 3, next.Roster.Len(), "roster kept")
	assert.Equal(t, []string{"Other"}, next.Buckets.Names(), "other documents still applied")
}

func TestDrop_UnitOnSlotAssigns(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)

	st, outcome := f.controller.Drop(context.Background(), st, dnd.UnitID(12), "slot-0-0-0")

	assert.Equal(t, fleet.OutcomeInserted, outcome)
	view, err := session.RenderDeck(st, 0)
	require.NoError(t, err)
	assert.Equal(t, "Kongou", view.Sections[0][0].Name)
	assert.Equal(t, 99, view.Sections[0][0].Level)
}

func TestDrop_CrossDeckPromptNamesUnit(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	st, _ = f.controller.Drop(context.Background(), st, dnd.UnitID(12), "slot-0-0-0")
	st = f.controller.AddDeck(st)
	require.Equal(t, 1, st.CurrentDeck)
	f.confirmer.SetAnswer(false)

	next, outcome := f.controller.Drop(context.Background(), st, dnd.UnitID(12), "slot-1-0-0")

	assert.Equal(t, fleet.OutcomeDeclined, outcome)
	prompts := f.confirmer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0].Message, "Kongou")
	assert.Equal(t, st.Fleets.Decks(), next.Fleets.Decks())
}

func TestDrop_IgnoredPayloads(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)

	tests := []struct {
		name   string
		active string
		over   string
	}{
		{"garbage active", "banana", "slot-0-0-0"},
		{"garbage target", dnd.UnitID(11), "nowhere"},
		{"unknown unit", dnd.UnitID(999), "slot-0-0-0"},
		{"slot out of range", dnd.UnitID(11), "slot-4-0-0"},
		{"catalog outside tagging mode", dnd.CatalogID(1), dnd.GroupID(st.Bonus.Groups()[0].ID)},
		{"catalog on slot", dnd.CatalogID(1), "slot-0-0-0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, outcome := f.controller.Drop(context.Background(), st, tt.active, tt.over)

			assert.Equal(t, fleet.OutcomeRejected, outcome)
			assert.Equal(t, st.Fleets.Decks(), next.Fleets.Decks())
			assert.Equal(t, st.Bonus.Groups(), next.Bonus.Groups())
		})
	}
}

func TestRelease_GestureDrivesDrop(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	sensor := dnd.NewSensor(0)

	sensor.Press(dnd.UnitID(11), dnd.Point{})
	sensor.Move(dnd.Point{X: 3})
	next, outcome := f.controller.Release(context.Background(), st, sensor, "slot-0-0-0")
	assert.Equal(t, fleet.OutcomeUnchanged, outcome, "a click never drops")
	assert.Equal(t, st.Fleets.OccupiedCount(), next.Fleets.OccupiedCount())

	sensor.Press(dnd.UnitID(11), dnd.Point{})
	sensor.Move(dnd.Point{X: 6, Y: 8})
	next, outcome = f.controller.Release(context.Background(), st, sensor, "slot-0-0-0")
	assert.Equal(t, fleet.OutcomeInserted, outcome)
	assert.Equal(t, 1, next.Fleets.OccupiedCount())
	assert.Equal(t, dnd.StateIdle, sensor.State())
}

func TestPress_UnitsPlacedInActiveSetCannotBePickedUp(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	st, _ = f.controller.Drop(context.Background(), st, dnd.UnitID(11), "slot-0-0-0")
	sensor := dnd.NewSensor(0)

	assert.False(t, f.controller.Press(st, sensor, dnd.UnitID(11), dnd.Point{}))
	assert.Equal(t, dnd.StateIdle, sensor.State())

	assert.True(t, f.controller.Press(st, sensor, dnd.UnitID(12), dnd.Point{}))
	sensor.Move(dnd.Point{X: 10})
	next, outcome := f.controller.Release(context.Background(), st, sensor, "slot-0-0-1")
	assert.Equal(t, fleet.OutcomeInserted, outcome)
	assert.Equal(t, 2, next.Fleets.OccupiedCount())
}

func TestDrop_CatalogOnGroupInTaggingMode(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t).WithMode(session.ModeTagging)
	group := st.Bonus.Groups()[0].ID

	st, outcome := f.controller.Drop(context.Background(), st, dnd.CatalogID(1), dnd.GroupID(group))
	require.Equal(t, fleet.OutcomeApplied, outcome)
	st, err := f.controller.SetBonusText(st, 0, "E-2 x1.3")
	require.NoError(t, err)

	rows := session.RosterView(st)
	for _, r := range rows {
		if r.ReferenceID == 1 {
			assert.Equal(t, "E-2 x1.3", r.Bonus)
		} else {
			assert.Empty(t, r.Bonus)
		}
	}
}

func TestImportRoster_SynthesizedIDsResetDecks(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	st, _ = f.controller.Drop(context.Background(), st, dnd.UnitID(11), "slot-0-0-0")
	text := `svdata={"api_data":{"api_ship":[{"api_ship_id":1,"api_lv":1},{"api_ship_id":2,"api_lv":2}]}}`

	t.Run("declined", func(t *testing.T) {
		f.confirmer.SetAnswer(false)
		next, outcome, err := f.controller.ImportRoster(context.Background(), st, text)

		require.NoError(t, err)
		assert.Equal(t, fleet.OutcomeDeclined, outcome)
		assert.Equal(t, 3, next.Roster.Len())
		assert.NotContains(t, f.gateway.Saves(), storage.KindRoster)
	})

	t.Run("accepted", func(t *testing.T) {
		f.confirmer.SetAnswer(true)
		next, outcome, err := f.controller.ImportRoster(context.Background(), st, text)

		require.NoError(t, err)
		assert.Equal(t, fleet.OutcomeApplied, outcome)
		_, ok := next.Roster.Find(roster.SyntheticIDBase + 1)
		assert.True(t, ok)
		assert.Equal(t, fleet.Standard{}, next.Fleets.Decks()[0].Fleet)
		assert.Contains(t, f.gateway.Saves(), storage.KindRoster)
	})
}

func TestImportRoster_MalformedInputChangesNothing(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)

	next, outcome, err := f.controller.ImportRoster(context.Background(), st, `{"nope":true}`)

	var vErr *shared.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, fleet.OutcomeRejected, outcome)
	assert.Equal(t, st.Roster.Units(), next.Roster.Units())
	assert.Empty(t, f.gateway.Saves())
}

func TestImportCatalog_UploadsAndReloads(t *testing.T) {
	f := newFixture(t)
	st := session.NewState()
	text := `svdata={"api_result":1,"api_data":{"api_mst_ship":[{"api_id":7,"api_name":"Yamato","api_stype":9}],"api_mst_stype":[{"api_id":9,"api_name":"BB"}]}}`

	st, err := f.controller.ImportCatalog(context.Background(), st, text)

	require.NoError(t, err)
	assert.Equal(t, "Yamato", st.Catalog.Name(7))
}

func TestSaveDecks_FailureKeepsUnsavedState(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	st, _ = f.controller.Drop(context.Background(), st, dnd.UnitID(11), "slot-0-0-0")
	require.True(t, st.Fleets.Dirty())
	f.gateway.FailSave(storage.KindFormations, errors.New("500"))

	next, err := f.controller.SaveDecks(context.Background(), st)

	require.Error(t, err)
	assert.True(t, next.Fleets.Dirty())
}

func TestSaveDecks_PersistsAllSets(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)
	st, _ = f.controller.Drop(context.Background(), st, dnd.UnitID(11), "slot-0-0-0")

	st, outcome, err := f.controller.SaveAs(context.Background(), st, "event")
	require.NoError(t, err)
	require.Equal(t, fleet.OutcomeApplied, outcome)

	doc, ok := f.gateway.Document(storage.KindFormations)
	require.True(t, ok)
	assert.JSONEq(t, `{
		"default":[{"name":"Fleet 1","shape":"standard","ships":[null,null,null,null,null,null]}],
		"event":[{"name":"Fleet 1","shape":"standard","ships":[11,null,null,null,null,null]}]
	}`, string(doc))
	assert.False(t, st.Fleets.Dirty())
}

func TestRemoveDeck_ClampsCurrentDeck(t *testing.T) {
	f := newFixture(t)
	st := f.controller.AddDeck(f.loaded(t))
	require.Equal(t, 1, st.CurrentDeck)

	st, outcome, err := f.controller.RemoveDeck(context.Background(), st, 1)

	require.NoError(t, err)
	assert.Equal(t, fleet.OutcomeApplied, outcome)
	assert.Equal(t, 0, st.CurrentDeck)
}

func TestBuckets(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t)

	st, err := f.controller.SelectBucket(st, "Destroyers")
	require.NoError(t, err)
	_, err = f.controller.SelectBucket(st, "Carriers")
	assert.Error(t, err)

	st, err = f.controller.RemoveBucket(st, 0)
	require.NoError(t, err)
	assert.Empty(t, st.SelectedBucket, "selection cleared with its bucket")

	st, err = f.controller.AddBucket(st, "Battleships")
	require.NoError(t, err)
	st, err = f.controller.SetBucketCategories(st, 0, []int{9})
	require.NoError(t, err)
	require.NoError(t, f.controller.SaveBuckets(context.Background(), st))

	doc, _ := f.gateway.Document(storage.KindBuckets)
	assert.JSONEq(t, `[{"name":"Battleships","stypes":[9]}]`, string(doc))
}

func TestBonusExportImport(t *testing.T) {
	f := newFixture(t)
	st := f.loaded(t).WithMode(session.ModeTagging)
	group := st.Bonus.Groups()[0].ID
	st, _ = f.controller.Drop(context.Background(), st, dnd.CatalogID(2), dnd.GroupID(group))
	st, _ = f.controller.AddBonusGroup(st)

	data, err := f.controller.ExportBonus(st)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ids":[2],"text":""}]`, string(data))

	next, count, err := f.controller.ImportBonus(session.NewState(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []int{2}, next.Bonus.Groups()[0].Members)

	require.NoError(t, f.controller.SaveBonus(context.Background(), st))
	doc, _ := f.gateway.Document(storage.KindBonus)
	assert.JSONEq(t, `[{"ids":[2],"text":""}]`, string(doc))
}
