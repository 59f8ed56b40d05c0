package repository

import (
	"context"

	"telegram-forward-bot/internal/domain/model"
)

// ForwardRunRepository persists finished run records for operator
// visibility. Writes are best-effort; a failed insert never fails a run.
type ForwardRunRepository interface {
	Save(ctx context.Context, run *model.ForwardRun) error
	ListRecent(ctx context.Context, limit int) ([]*model.ForwardRun, error)
}
