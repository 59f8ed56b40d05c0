package repository

import (
	"context"

	"telegram-forward-bot/internal/domain/model"
)

// DialogStateRepository is the port for the per-user forward dialog
// state. Entries are only ever read and written by their own user's
// update task; implementations guard the map, not the entries.
type DialogStateRepository interface {
	// Set stores (or overwrites) the dialog state for a user.
	Set(ctx context.Context, tgID int64, state *model.DialogState) error
	// Get returns the state, or domain.ErrDialogNotFound.
	Get(ctx context.Context, tgID int64) (*model.DialogState, error)
	// Clear removes the entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context, tgID int64) error
}
