package bonus

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// Entry is the exported form of one group
type Entry struct {
	IDs  []int  `json:"ids"`
	Text string `json:"text"`
}

// Export converts the board to its flat list form, dropping empty groups
func (b Board) Export() []Entry {
	out := make([]Entry, 0, len(b.groups))
	for _, g := range b.groups {
		if g.IsEmpty() {
			continue
		}
		ids := append([]int{}, g.Members...)
		out = append(out, Entry{IDs: ids, Text: g.Text})
	}
	return out
}

// Encode serializes the exported form
func (b Board) Encode() ([]byte, error) {
	return json.Marshal(b.Export())
}

// Import builds a board from entries, keeping every entry as-is with a fresh id
func Import(entries []Entry) Board {
	groups := make([]Group, 0, len(entries))
	for _, e := range entries {
		groups = append(groups, Group{
			ID:      newID(),
			Text:    e.Text,
			Members: append([]int(nil), e.IDs...),
		})
	}
	return Board{groups: groups}
}

// Decode parses a stored bonus document. An empty document loads a placeholder
// group so there is always somewhere to drop onto.
func Decode(data []byte) (Board, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return PlaceholderBoard(), nil
	}
	entries, err := decodeEntries(trimmed)
	if err != nil {
		return Board{}, err
	}
	if len(entries) == 0 {
		return PlaceholderBoard(), nil
	}
	return Import(entries), nil
}

// DecodeFile parses an exchange file. The list is taken as-is, so an empty
// list clears the board.
func DecodeFile(data []byte) (Board, error) {
	entries, err := decodeEntries(bytes.TrimSpace(data))
	if err != nil {
		return Board{}, err
	}
	return Import(entries), nil
}

func decodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, shared.NewValidationError("bonus", fmt.Sprintf("expected a list of {ids, text}: %v", err))
	}
	return entries, nil
}
