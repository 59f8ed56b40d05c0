// Package state provides the default in-process dialog state store.
package state

import (
	"context"
	"sync"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/repository"
)

var _ repository.DialogStateRepository = (*MemoryStateRepo)(nil)

// MemoryStateRepo keeps dialog state in a process-wide map. The mutex
// guards the map against concurrent insert/delete from different users;
// each entry has a single writer (its own user's update task), so
// entries themselves need no guarding.
type MemoryStateRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.DialogState
}

func NewMemoryStateRepo() *MemoryStateRepo {
	return &MemoryStateRepo{store: make(map[int64]*model.DialogState)}
}

func (m *MemoryStateRepo) Set(ctx context.Context, tgID int64, st *model.DialogState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.store[tgID] = &cp
	return nil
}

func (m *MemoryStateRepo) Get(ctx context.Context, tgID int64) (*model.DialogState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrDialogNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *MemoryStateRepo) Clear(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, tgID)
	return nil
}
