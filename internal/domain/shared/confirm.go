package shared

import "context"

// PromptKind identifies which conflict situation a confirmation is about
type PromptKind string

const (
	PromptCrossDeckDuplicate PromptKind = "CROSS_DECK_DUPLICATE"
	PromptShapeTruncation    PromptKind = "SHAPE_TRUNCATION"
	PromptRemoveDeck         PromptKind = "REMOVE_DECK"
	PromptOverwriteSet       PromptKind = "OVERWRITE_SET"
	PromptDeleteSet          PromptKind = "DELETE_SET"
	PromptDiscardChanges     PromptKind = "DISCARD_CHANGES"
	PromptRemoveBonusGroup   PromptKind = "REMOVE_BONUS_GROUP"
	PromptResetDecks         PromptKind = "RESET_DECKS"
)

// Prompt is a question put to the user before a destructive or duplicating change
type Prompt struct {
	Kind    PromptKind
	Message string
}

// Confirmer asks the user to accept or decline a conflict resolution.
// A false answer aborts the whole operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) bool
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, prompt Prompt) bool

// Confirm calls f(ctx, prompt)
func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) bool {
	return f(ctx, prompt)
}

// AlwaysConfirm accepts every prompt (non-interactive --yes mode)
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) bool { return true })

// NeverConfirm declines every prompt
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) bool { return false })
