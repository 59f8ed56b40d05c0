package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/repository"
	"telegram-forward-bot/internal/infra/metrics"
)

var _ repository.ForwardRunRepository = (*forwardRunRepo)(nil)

type forwardRunRepo struct {
	pool *pgxpool.Pool
}

func NewForwardRunRepo(pool *pgxpool.Pool) repository.ForwardRunRepository {
	return &forwardRunRepo{pool: pool}
}

func (r *forwardRunRepo) Save(ctx context.Context, run *model.ForwardRun) error {
	const q = `
INSERT INTO forward_runs (
  id, run_id, user_id, source_group_id, topic_id, destination_id, mode,
  succeeded, failed, status, started_at, finished_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`

	_, err := r.pool.Exec(ctx, q,
		run.ID, run.RunID, run.UserID, run.SourceGroupID, run.TopicID,
		run.DestinationID, string(run.Mode), run.Succeeded, run.Failed,
		string(run.Status), run.StartedAt, run.FinishedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// duplicate run id, already recorded
			return nil
		}
		return domain.ErrOperationFailed
	}
	metrics.IncRun(string(run.Status))
	return nil
}

func (r *forwardRunRepo) ListRecent(ctx context.Context, limit int) ([]*model.ForwardRun, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, run_id, user_id, source_group_id, topic_id, destination_id, mode,
       succeeded, failed, status, started_at, finished_at
  FROM forward_runs
 ORDER BY finished_at DESC
 LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.ForwardRun
	for rows.Next() {
		var run model.ForwardRun
		var mode, status string
		if err := rows.Scan(&run.ID, &run.RunID, &run.UserID, &run.SourceGroupID,
			&run.TopicID, &run.DestinationID, &mode, &run.Succeeded, &run.Failed,
			&status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, domain.ErrOperationFailed
		}
		run.Mode = model.ForwardMode(mode)
		run.Status = model.ForwardRunStatus(status)
		out = append(out, &run)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}
