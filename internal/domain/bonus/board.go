package bonus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// ErrGroupNotFound is returned for an unknown group id or index
var ErrGroupNotFound = errors.New("bonus group not found")

// Group tags a set of reference ids with a free-text note
type Group struct {
	ID      string
	Text    string
	Members []int
}

// IsEmpty reports whether the group has neither text nor members
func (g Group) IsEmpty() bool {
	return g.Text == "" && len(g.Members) == 0
}

// HasMember reports whether referenceID is tagged by this group
func (g Group) HasMember(referenceID int) bool {
	for _, m := range g.Members {
		if m == referenceID {
			return true
		}
	}
	return false
}

func (g Group) clone() Group {
	g.Members = append([]int(nil), g.Members...)
	return g
}

// Board is the ordered list of bonus groups. Operations return a new Board.
type Board struct {
	groups []Group
}

// NewBoard builds a board from groups, copying them
func NewBoard(groups []Group) Board {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.clone()
	}
	return Board{groups: out}
}

// PlaceholderBoard is a board with one empty group, the state after loading nothing
func PlaceholderBoard() Board {
	return Board{groups: []Group{{ID: newID()}}}
}

func newID() string {
	return uuid.New().String()
}

// Groups returns a copy of the groups in order
func (b Board) Groups() []Group {
	return NewBoard(b.groups).groups
}

// Len returns the number of groups
func (b Board) Len() int {
	return len(b.groups)
}

func (b Board) indexOf(groupID string) int {
	for i, g := range b.groups {
		if g.ID == groupID {
			return i
		}
	}
	return -1
}

func (b Board) checkIndex(index int) error {
	if index < 0 || index >= len(b.groups) {
		return fmt.Errorf("group %d: %w", index, ErrGroupNotFound)
	}
	return nil
}

// AddGroup appends an empty group with a fresh id
func (b Board) AddGroup() (Board, string) {
	id := newID()
	groups := append(b.Groups(), Group{ID: id})
	return Board{groups: groups}, id
}

// RemoveGroup deletes a group after confirmation
func (b Board) RemoveGroup(ctx context.Context, index int, confirm shared.Confirmer) (Board, bool, error) {
	if err := b.checkIndex(index); err != nil {
		return b, false, err
	}
	label := strings.TrimSpace(b.groups[index].Text)
	if label == "" {
		label = fmt.Sprintf("group %d", index+1)
	}
	if !confirm.Confirm(ctx, shared.Prompt{
		Kind:    shared.PromptRemoveBonusGroup,
		Message: fmt.Sprintf("Remove bonus group %q?", label),
	}) {
		return b, false, nil
	}
	groups := b.Groups()
	return Board{groups: append(groups[:index], groups[index+1:]...)}, true, nil
}

// SetGroupText replaces the note of one group
func (b Board) SetGroupText(index int, text string) (Board, error) {
	if err := b.checkIndex(index); err != nil {
		return b, err
	}
	groups := b.Groups()
	groups[index].Text = text
	return Board{groups: groups}, nil
}

// AddMember tags referenceID with a group. Adding an existing member is a no-op.
func (b Board) AddMember(groupID string, referenceID int) (Board, error) {
	i := b.indexOf(groupID)
	if i < 0 {
		return b, fmt.Errorf("group %s: %w", groupID, ErrGroupNotFound)
	}
	if b.groups[i].HasMember(referenceID) {
		return b, nil
	}
	groups := b.Groups()
	groups[i].Members = append(groups[i].Members, referenceID)
	return Board{groups: groups}, nil
}

// RemoveMember untags referenceID from a group
func (b Board) RemoveMember(groupID string, referenceID int) (Board, error) {
	i := b.indexOf(groupID)
	if i < 0 {
		return b, fmt.Errorf("group %s: %w", groupID, ErrGroupNotFound)
	}
	groups := b.Groups()
	members := groups[i].Members[:0]
	for _, m := range groups[i].Members {
		if m != referenceID {
			members = append(members, m)
		}
	}
	groups[i].Members = members
	return Board{groups: groups}, nil
}

// Map joins the text of every group containing a reference id, in group order
func (b Board) Map() map[int]string {
	out := make(map[int]string)
	for _, g := range b.groups {
		for _, id := range g.Members {
			if prev, ok := out[id]; ok {
				out[id] = prev + "\n" + g.Text
			} else {
				out[id] = g.Text
			}
		}
	}
	return out
}

// MemberCount counts distinct tagged reference ids
func (b Board) MemberCount() int {
	seen := make(map[int]struct{})
	for _, g := range b.groups {
		for _, id := range g.Members {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Tagged returns every tagged reference id in ascending order
func (b Board) Tagged() []int {
	ids := make([]int, 0)
	for id := range b.Map() {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
