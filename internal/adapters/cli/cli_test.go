package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kantai-tool/fleetdeck/internal/adapters/httpapi"
	"github.com/kantai-tool/fleetdeck/internal/adapters/metrics"
	"github.com/kantai-tool/fleetdeck/internal/application/auth"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/application/session"
	appStorage "github.com/kantai-tool/fleetdeck/internal/application/storage"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
	"github.com/kantai-tool/fleetdeck/test/helpers"
)

const masterFile = `svdata={"api_result":1,"api_data":{
	"api_mst_ship": [
		{"api_id": 1, "api_name": "Mutsuki", "api_stype": 2, "api_sortno": 10},
		{"api_id": 2, "api_name": "Kongou", "api_stype": 9, "api_sortno": 5}
	],
	"api_mst_stype": [{"api_id": 2, "api_name": "DD"}, {"api_id": 9, "api_name": "BB"}]
}}`

const rosterFile = `[
	{"api_id": 11, "api_ship_id": 1, "api_lv": 50},
	{"api_id": 12, "api_ship_id": 2, "api_lv": 99},
	{"api_id": 13, "api_ship_id": 1, "api_lv": 70}
]`

type cliHarness struct {
	t       *testing.T
	store   *helpers.MockDocumentStore
	baseURL string
	userCfg string
	dir     string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	store := helpers.NewMockDocumentStore()
	m := mediator.NewMediator()
	m.Use(auth.UsernameMiddleware())
	require.NoError(t, appStorage.RegisterHandlers(m, store))
	collectors, err := metrics.New("cli_test")
	require.NoError(t, err)

	srv := httpapi.NewServer(config.ServerConfig{APIPrefix: "/api", BodyLimit: config.DefaultBodyLimit}, "/metrics", m, zaptest.NewLogger(t), collectors)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	return &cliHarness{
		t:       t,
		store:   store,
		baseURL: ts.URL + "/api",
		userCfg: filepath.Join(dir, "fleetdeck", "config.json"),
		dir:     dir,
	}
}

// runWithInput executes one command line with a fresh root command; stdin answers prompts
func (h *cliHarness) runWithInput(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	env := &Env{In: strings.NewReader(stdin), Out: &out, Err: &errOut, UserConfigPath: h.userCfg}
	root := NewRootCommand(env)
	root.SetArgs(append([]string{"--server", h.baseURL}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "fleetdeck %s", strings.Join(args, " "))
	return out
}

func (h *cliHarness) file(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seeded logs in as alice and imports catalog and roster
func (h *cliHarness) seeded() *cliHarness {
	h.t.Helper()
	h.mustRun("login", "Alice")
	h.mustRun("catalog", "import", h.file("master.json", masterFile))
	h.mustRun("roster", "import", h.file("roster.json", rosterFile))
	return h
}

func (h *cliHarness) stored(kind storage.Kind) string {
	h.t.Helper()
	user, err := player.NewUsername("alice")
	require.NoError(h.t, err)
	data, _ := h.store.Get(user, kind)
	return string(data)
}

func TestLogin_StoresNormalizedToken(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "  Alice ")

	assert.Contains(t, out, "Logged in as alice")
	handler, err := config.NewUserConfigHandlerAt(h.userCfg)
	require.NoError(t, err)
	userCfg, err := handler.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", userCfg.Token)
	assert.Equal(t, h.baseURL, userCfg.ServerURL)
}

func TestCommands_RequireLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("roster", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)

	h.mustRun("login", "alice")
	h.mustRun("logout")
	_, err = h.run("deck", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRosterList_SortedAndFiltered(t *testing.T) {
	h := newHarness(t).seeded()

	var rows []session.RosterRow
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("roster", "list", "-o", "json")), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, []int{12, 13, 11}, []int{rows[0].InstanceID, rows[1].InstanceID, rows[2].InstanceID})
	assert.Equal(t, "Kongou", rows[0].Name)

	h.mustRun("category", "add", "Destroyers")
	h.mustRun("category", "set", "1", "2")
	rows = nil
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("roster", "list", "--bucket", "Destroyers", "--sort", "id", "-o", "json")), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "DD", rows[0].CategoryName)

	_, err := h.run("roster", "list", "--sort", "weight")
	assert.Error(t, err)
}

func TestDeckAssign_PersistsActiveSet(t *testing.T) {
	h := newHarness(t).seeded()

	out := h.mustRun("deck", "assign", "12", "1", "1")
	assert.Contains(t, out, "inserted")

	var views []session.DeckView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("deck", "list", "-o", "json")), &views))
	require.Len(t, views, 1)
	assert.Equal(t, 12, views[0].Sections[0][0].InstanceID)
	assert.Equal(t, "Kongou", views[0].Sections[0][0].Name)
	assert.Contains(t, h.stored(storage.KindFormations), `"default"`)

	_, err := h.run("deck", "assign", "999", "1", "2")
	assert.Error(t, err, "unknown unit")
}

func TestDeckShape_DeclinedPromptKeepsDeck(t *testing.T) {
	h := newHarness(t).seeded()
	h.mustRun("deck", "assign", "11", "1", "1")
	h.mustRun("deck", "add-slot", "1")
	h.mustRun("deck", "assign", "13", "1", "7")

	out, err := h.runWithInput("n\n", "deck", "shape", "1", "standard")

	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	var views []session.DeckView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("deck", "list", "1", "-o", "json")), &views))
	assert.Equal(t, fleet.ShapeExtended, views[0].Shape)
}

func TestSets_SaveAsUseDelete(t *testing.T) {
	h := newHarness(t).seeded()
	h.mustRun("deck", "assign", "11", "1", "1")

	h.mustRun("set", "save-as", "event")
	h.mustRun("deck", "clear", "1", "1")

	out := h.mustRun("set", "list")
	assert.Contains(t, out, "event")
	assert.Contains(t, out, "default")

	h.mustRun("set", "use", "default")
	var views []session.DeckView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("deck", "list", "-o", "json")), &views))
	assert.Equal(t, 11, views[0].Sections[0][0].InstanceID)

	h.mustRun("-y", "set", "delete")
	out = h.mustRun("set", "list")
	assert.NotContains(t, out, "default")

	_, err := h.run("-y", "set", "delete")
	assert.ErrorIs(t, err, fleet.ErrLastSet)

	_, err = h.run("--set", "missing", "deck", "list")
	assert.Error(t, err)
}

func TestBonus_TagExportImport(t *testing.T) {
	h := newHarness(t).seeded()

	h.mustRun("bonus", "text", "1", "x1.2 vs boss")
	h.mustRun("bonus", "tag", "1", "1", "2")

	var rows []bonusRow
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("bonus", "list", "-o", "json")), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "x1.2 vs boss", rows[0].Text)
	assert.Len(t, rows[0].Members, 2)
	assert.Contains(t, h.stored(storage.KindBonus), "x1.2 vs boss")

	exported := filepath.Join(h.dir, "bonus.json")
	h.mustRun("bonus", "export", exported)
	h.mustRun("bonus", "untag", "1", "2")
	h.mustRun("bonus", "add", "second")

	out := h.mustRun("bonus", "import", exported)
	assert.Contains(t, out, "imported 1 group(s) tagging 2 unit type(s)")

	_, err := h.run("bonus", "tag", "5", "1")
	assert.Error(t, err)
}

func TestBonusRemove_ConfirmsNonEmptyGroup(t *testing.T) {
	h := newHarness(t).seeded()
	h.mustRun("bonus", "tag", "1", "1")

	out, err := h.runWithInput("no\n", "bonus", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out = h.mustRun("-y", "bonus", "remove", "1")
	assert.Contains(t, out, "removed bonus group 1")
}

func TestCategory_EditAndDefaultBucket(t *testing.T) {
	h := newHarness(t).seeded()

	h.mustRun("category", "add", "Battleships")
	h.mustRun("category", "set", "1", "9")
	h.mustRun("category", "rename", "1", "Capital")
	assert.JSONEq(t, `[{"name":"Capital","stypes":[9]}]`, h.stored(storage.KindBuckets))

	_, err := h.run("category", "add", "Other")
	assert.Error(t, err, "reserved remainder name")

	h.mustRun("category", "use", "Capital")
	var rows []session.RosterRow
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("roster", "list", "-o", "json")), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].InstanceID)

	h.mustRun("category", "remove", "1")
	assert.JSONEq(t, `[]`, h.stored(storage.KindBuckets))
}

func TestConfigSetServer(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("config", "set-server", "not a url")
	assert.Error(t, err)

	h.mustRun("config", "set-server", "http://fleet.example:3001/api")
	out, err := h.runWithInput("", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, h.baseURL, "--server overrides the stored URL")
}

func TestMaskPassword(t *testing.T) {
	masked := maskPassword("postgres://fleet:secret@db:5432/fleet")
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "fleet:")
	assert.Contains(t, masked, "@db:5432/fleet")

	for _, raw := range []string{"postgres://fleet@db/fleet", "host=db user=fleet"} {
		assert.Equal(t, raw, maskPassword(raw))
	}
}

func TestPromptConfirmer(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		var out bytes.Buffer
		c := NewPromptConfirmer(strings.NewReader(input), &out)
		got := c.Confirm(context.Background(), shared.Prompt{Kind: shared.PromptDeleteSet, Message: "Proceed?"})
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Proceed? [y/N]")
	}
}
