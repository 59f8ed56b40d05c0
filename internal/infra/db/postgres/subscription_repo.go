package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) repository.SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) FindActiveByTgID(ctx context.Context, tgID int64) (*repository.Subscription, error) {
	const q = `
SELECT id, tg_id, plan_name, expires_at
  FROM subscriptions
 WHERE tg_id=$1 AND expires_at > now()
 ORDER BY expires_at DESC
 LIMIT 1;`

	var s repository.Subscription
	row := r.pool.QueryRow(ctx, q, tgID)
	if err := row.Scan(&s.ID, &s.TgID, &s.PlanName, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrOperationFailed
	}
	return &s, nil
}
