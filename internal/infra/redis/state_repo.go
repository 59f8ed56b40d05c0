package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.DialogStateRepository = (*DialogStateRepo)(nil)

// DialogStateRepo is the redis-backed dialog state store. The TTL keeps
// abandoned dialogs from living forever.
type DialogStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewDialogStateRepo(client RedisClient, ttl time.Duration) repository.DialogStateRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DialogStateRepo{client: client, ttl: ttl}
}

func (s *DialogStateRepo) stateKey(tgID int64) string {
	return fmt.Sprintf("fwd_state:%d", tgID)
}

func (s *DialogStateRepo) Set(ctx context.Context, tgID int64, state *model.DialogState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(tgID), data, s.ttl)
}

func (s *DialogStateRepo) Get(ctx context.Context, tgID int64) (*model.DialogState, error) {
	data, err := s.client.Get(ctx, s.stateKey(tgID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrDialogNotFound
		}
		return nil, err
	}
	var state model.DialogState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *DialogStateRepo) Clear(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, s.stateKey(tgID))
}
