package session

import (
	"context"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/domain/bonus"
	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/category"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/roster"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
)

// Gateway is the session's port to the persistence server. The gateway is bound
// to one user; documents travel as raw JSON.
type Gateway interface {
	Load(ctx context.Context, kind storage.Kind) ([]byte, error)
	Save(ctx context.Context, kind storage.Kind, data []byte) error
}

// ViewMode is the screen the user is working in
type ViewMode string

const (
	ModeFormation ViewMode = "formation"
	ModeList      ViewMode = "list"
	ModeTagging   ViewMode = "tagging"
	ModeAdmin     ViewMode = "admin"
	ModeImport    ViewMode = "import"
)

// ParseViewMode validates a view mode name
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(s); m {
	case ModeFormation, ModeList, ModeTagging, ModeAdmin, ModeImport:
		return m, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// State is everything one user session holds. Controller methods take a State
// and return the next one; a failed operation returns the input unchanged.
type State struct {
	Mode           ViewMode
	Roster         roster.Roster
	Catalog        *catalog.Catalog
	Buckets        category.Config
	SelectedBucket string
	Fleets         fleet.Workspace
	CurrentDeck    int
	Bonus          bonus.Board
	Sort           roster.SortMode
	ShowDetail     bool
}

// NewState is the state before anything is loaded
func NewState() State {
	return State{
		Mode:    ModeFormation,
		Roster:  roster.New(nil),
		Catalog: catalog.Empty(),
		Fleets:  fleet.DefaultWorkspace(),
		Bonus:   bonus.PlaceholderBoard(),
		Sort:    roster.SortByLevel,
	}
}

// clampDeck keeps CurrentDeck inside the working decks
func (s State) clampDeck() State {
	n := len(s.Fleets.Decks())
	if s.CurrentDeck >= n {
		s.CurrentDeck = n - 1
	}
	if s.CurrentDeck < 0 {
		s.CurrentDeck = 0
	}
	return s
}

// WithMode switches the view mode
func (s State) WithMode(mode ViewMode) State {
	s.Mode = mode
	return s
}

// WithSort changes the roster ordering
func (s State) WithSort(mode roster.SortMode) State {
	s.Sort = mode
	return s
}

// ToggleDetail flips the detailed stat display
func (s State) ToggleDetail() State {
	s.ShowDetail = !s.ShowDetail
	return s
}
