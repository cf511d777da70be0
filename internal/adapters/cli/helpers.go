package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kantai-tool/fleetdeck/internal/adapters/api"
	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
	"github.com/kantai-tool/fleetdeck/internal/infrastructure/logging"
)

// errNotLoggedIn points the user at the login command
var errNotLoggedIn = errors.New("not logged in: run 'fleetdeck login <username>' first")

// userConfigHandler resolves the per-user preferences file
func userConfigHandler(env *Env) (*config.UserConfigHandler, error) {
	if env.UserConfigPath != "" {
		return config.NewUserConfigHandlerAt(env.UserConfigPath)
	}
	return config.NewUserConfigHandler()
}

// clientSettings merges system config, user preferences and flags.
// Priority: flags > user config > config.yaml/env > defaults
func clientSettings(env *Env) (config.ClientConfig, *config.UserConfig, *config.UserConfigHandler, error) {
	cfg := config.LoadConfigOrDefault(configPath)

	handler, err := userConfigHandler(env)
	if err != nil {
		return config.ClientConfig{}, nil, nil, fmt.Errorf("failed to create user config handler: %w", err)
	}
	userCfg, err := handler.Load()
	if err != nil {
		return config.ClientConfig{}, nil, nil, err
	}

	clientCfg := cfg.Client
	switch {
	case serverURL != "":
		clientCfg.BaseURL = serverURL
	case userCfg.ServerURL != "":
		clientCfg.BaseURL = userCfg.ServerURL
	}
	return clientCfg, userCfg, handler, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := logging.New(config.LoggingConfig{Level: "debug", Format: "console", Output: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newConfirmer(env *Env) shared.Confirmer {
	if assumeYes {
		return shared.AlwaysConfirm
	}
	return NewPromptConfirmer(env.In, env.Err)
}

// sessionRun is one loaded session: the controller plus the state after Load
type sessionRun struct {
	ctx     context.Context
	env     *Env
	ctrl    *session.Controller
	state   session.State
	userCfg *config.UserConfig
	logger  *zap.Logger
}

// openSession logs in with the stored token, loads every document and
// activates the requested fleet set
func openSession(ctx context.Context, env *Env) (*sessionRun, error) {
	clientCfg, userCfg, _, err := clientSettings(env)
	if err != nil {
		return nil, err
	}
	token := tokenFlag
	if token == "" {
		token = userCfg.Token
	}
	if token == "" {
		return nil, errNotLoggedIn
	}

	logger := newLogger()
	client := api.NewFleetdeckClient(clientCfg, token)
	ctrl := session.NewController(client, newConfirmer(env), logger)

	st, err := ctrl.Load(ctx, session.NewState())
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}

	want := setName
	if want == "" {
		want = userCfg.ActiveSet
	}
	if want != "" && want != st.Fleets.Active() {
		if !contains(st.Fleets.SetNames(), want) {
			return nil, fmt.Errorf("fleet set %q does not exist (have: %s)", want, strings.Join(st.Fleets.SetNames(), ", "))
		}
		if st, _, err = ctrl.SwitchActive(ctx, st, want); err != nil {
			return nil, err
		}
	}

	return &sessionRun{ctx: ctx, env: env, ctrl: ctrl, state: st, userCfg: userCfg, logger: logger}, nil
}

// saveDecks persists the working decks of the active set
func (r *sessionRun) saveDecks() error {
	st, err := r.ctrl.SaveDecks(r.ctx, r.state)
	if err != nil {
		return err
	}
	r.state = st
	return nil
}

func (r *sessionRun) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.env.Out, format, args...)
}

// reportOutcome prints what happened; a declined or rejected change is not an error
func (r *sessionRun) reportOutcome(outcome fleet.Outcome, what string) {
	switch outcome {
	case fleet.OutcomeDeclined:
		r.printf("Cancelled: %s\n", what)
	case fleet.OutcomeUnchanged:
		r.printf("No change: %s\n", what)
	case fleet.OutcomeRejected:
		r.printf("Ignored: %s\n", what)
	default:
		r.printf("✓ %s (%s)\n", what, strings.ToLower(string(outcome)))
	}
}

// render writes v as json or yaml, or calls table for the default format
func render(out io.Writer, v interface{}, table func(w *tabwriter.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
}

// readInput reads a file argument, or stdin for "-"
func readInput(env *Env, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(env.In)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseIndex converts a 1-based command line position to a 0-based index
func parseIndex(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: want a number starting at 1", what, arg)
	}
	return n - 1, nil
}

func parsePositive(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return n, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
