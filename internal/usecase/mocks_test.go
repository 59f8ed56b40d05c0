// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/adapter"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// memStateRepo is a small in-memory DialogStateRepository for unit tests.
type memStateRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.DialogState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{store: make(map[int64]*model.DialogState)}
}

func (m *memStateRepo) Set(ctx context.Context, tgID int64, st *model.DialogState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	m.store[tgID] = &cp
	return nil
}

func (m *memStateRepo) Get(ctx context.Context, tgID int64) (*model.DialogState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrDialogNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStateRepo) Clear(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, tgID)
	return nil
}

func (m *memStateRepo) has(tgID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[tgID]
	return ok
}

// fakeMessenger is a scriptable adapter.Messenger.
type fakeMessenger struct {
	mu sync.Mutex

	unreachable map[int64]bool
	history     []model.Message
	historyErr  error
	messages    map[int]*model.Message // by id; absent -> ErrNotFound

	forwardErrs  map[int]error // returned once per id, then success
	rateLimited  map[int]int   // remaining RateLimitedError returns per id
	forwardCalls []int         // msg ids in call order
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		unreachable: make(map[int64]bool),
		messages:    make(map[int]*model.Message),
		forwardErrs: make(map[int]error),
		rateLimited: make(map[int]int),
	}
}

func (f *fakeMessenger) ResolveChat(ctx context.Context, chatID int64) (*model.Chat, error) {
	if f.unreachable[chatID] {
		return nil, domain.ErrNotFound
	}
	return &model.Chat{ID: chatID}, nil
}

func (f *fakeMessenger) History(ctx context.Context, chatID int64, limit int) ([]model.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeMessenger) GetMessage(ctx context.Context, chatID int64, msgID int) (*model.Message, error) {
	msg, ok := f.messages[msgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (f *fakeMessenger) Forward(ctx context.Context, fromChatID, toChatID int64, msgID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwardCalls = append(f.forwardCalls, msgID)
	if n := f.rateLimited[msgID]; n > 0 {
		f.rateLimited[msgID] = n - 1
		return &adapter.RateLimitedError{RetryAfter: time.Millisecond}
	}
	if err, ok := f.forwardErrs[msgID]; ok {
		delete(f.forwardErrs, msgID)
		return err
	}
	return nil
}

func (f *fakeMessenger) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.forwardCalls))
	copy(out, f.forwardCalls)
	return out
}

// memSubRepo backs the gate in tests.
type memSubRepo struct {
	subs map[int64]*repository.Subscription
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{subs: make(map[int64]*repository.Subscription)}
}

func (m *memSubRepo) FindActiveByTgID(ctx context.Context, tgID int64) (*repository.Subscription, error) {
	s, ok := m.subs[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// memRunRepo records audit writes.
type memRunRepo struct {
	mu   sync.Mutex
	runs []*model.ForwardRun
}

func (m *memRunRepo) Save(ctx context.Context, run *model.ForwardRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRunRepo) ListRecent(ctx context.Context, limit int) ([]*model.ForwardRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs, nil
}

// fakeBot records replies and status edits.
type fakeBot struct {
	mu       sync.Mutex
	sent     []string
	statuses []string
	nextID   int
}

func (b *fakeBot) SendMessage(ctx context.Context, tgID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, text)
	return nil
}

func (b *fakeBot) SendStatus(ctx context.Context, tgID int64, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.statuses = append(b.statuses, text)
	return b.nextID, nil
}

func (b *fakeBot) EditStatus(ctx context.Context, tgID int64, messageID int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, text)
	return nil
}

func (b *fakeBot) lastStatus() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.statuses) == 0 {
		return ""
	}
	return b.statuses[len(b.statuses)-1]
}

// inlineRunner executes submitted tasks synchronously.
type inlineRunner struct{}

func (inlineRunner) Submit(task func(ctx context.Context) error) error {
	return task(context.Background())
}

// recordingRunner captures handoffs without running anything.
type recordingRunner struct {
	mu   sync.Mutex
	reqs []*model.ForwardRequest
}

func (r *recordingRunner) Run(ctx context.Context, req *model.ForwardRequest, status StatusReporter) (*model.ForwardReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &model.ForwardReport{}, nil
}

// statusRecorder is a StatusReporter keeping every update.
type statusRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (s *statusRecorder) Update(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *statusRecorder) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

// allowAllGate bypasses the subscription check.
type allowAllGate struct{}

func (allowAllGate) CheckSubscription(ctx context.Context, tgID int64) error { return nil }
