package application_test

import (
	"context"
	"strings"
	"testing"

	"telegram-forward-bot/internal/application"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/infra/state"
	"telegram-forward-bot/internal/usecase"
)

// minimal collaborators for the dialog usecase
type openGate struct{}

func (openGate) CheckSubscription(ctx context.Context, tgID int64) error { return nil }

type noopRunner struct{ ran int }

func (r *noopRunner) Run(ctx context.Context, req *model.ForwardRequest, status usecase.StatusReporter) (*model.ForwardReport, error) {
	r.ran++
	return &model.ForwardReport{}, nil
}

type syncTasks struct{}

func (syncTasks) Submit(task func(ctx context.Context) error) error {
	return task(context.Background())
}

type stubBot struct{ edits []string }

func (b *stubBot) SendMessage(ctx context.Context, tgID int64, text string) error { return nil }
func (b *stubBot) SendStatus(ctx context.Context, tgID int64, text string) (int, error) {
	return 1, nil
}
func (b *stubBot) EditStatus(ctx context.Context, tgID int64, messageID int, text string) error {
	b.edits = append(b.edits, text)
	return nil
}

func newFacade(runner usecase.ForwardRunner) *application.BotFacade {
	uc := usecase.NewDialogUseCase(state.NewMemoryStateRepo(), openGate{}, runner, syncTasks{}, &stubBot{})
	return application.NewBotFacade(uc)
}

func TestHandleStartAndHelp(t *testing.T) {
	ctx := context.Background()
	f := newFacade(&noopRunner{})

	start, err := f.HandleStart(ctx, "alice")
	if err != nil {
		t.Fatalf("HandleStart: %v", err)
	}
	if !strings.Contains(start, "alice") || !strings.Contains(start, "/forward") {
		t.Fatalf("start text %q", start)
	}

	help, err := f.HandleHelp(ctx)
	if err != nil {
		t.Fatalf("HandleHelp: %v", err)
	}
	for _, cmd := range []string{"/forward", "/cancel", "/help"} {
		if !strings.Contains(help, cmd) {
			t.Fatalf("help text missing %s: %q", cmd, help)
		}
	}
}

func TestHandleForwardOpensDialog(t *testing.T) {
	ctx := context.Background()
	f := newFacade(&noopRunner{})

	reply, err := f.HandleForward(ctx, 5)
	if err != nil {
		t.Fatalf("HandleForward: %v", err)
	}
	if !strings.Contains(reply, "source group ID") {
		t.Fatalf("expected source prompt, got %q", reply)
	}

	// Plain text is now consumed by the dialog.
	_, handled, err := f.HandleText(ctx, 5, "-1001234567890")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !handled {
		t.Fatalf("text during a dialog must be handled")
	}
}

func TestHandleTextWithoutDialogFallsThrough(t *testing.T) {
	f := newFacade(&noopRunner{})
	_, handled, err := f.HandleText(context.Background(), 5, "hello")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if handled {
		t.Fatalf("idle user's text must not be consumed")
	}
}

func TestHandleCancel(t *testing.T) {
	ctx := context.Background()
	f := newFacade(&noopRunner{})

	reply, err := f.HandleCancel(ctx, 5)
	if err != nil {
		t.Fatalf("HandleCancel: %v", err)
	}
	if !strings.Contains(reply, "No active forward operation") {
		t.Fatalf("got %q", reply)
	}

	if _, err := f.HandleForward(ctx, 5); err != nil {
		t.Fatalf("HandleForward: %v", err)
	}
	reply, err = f.HandleCancel(ctx, 5)
	if err != nil {
		t.Fatalf("HandleCancel: %v", err)
	}
	if !strings.Contains(reply, "cancelled") {
		t.Fatalf("got %q", reply)
	}
}
