// File: internal/usecase/dialog_uc_test.go
package usecase

import (
	"context"
	"strings"
	"testing"

	"telegram-forward-bot/internal/domain/model"
)

func newDialogFixture() (*DialogUseCase, *memStateRepo, *recordingRunner, *fakeBot) {
	states := newMemStateRepo()
	runner := &recordingRunner{}
	bot := &fakeBot{}
	uc := NewDialogUseCase(states, allowAllGate{}, runner, inlineRunner{}, bot)
	return uc, states, runner, bot
}

func TestDialog_TextWithoutDialogIsIgnored(t *testing.T) {
	t.Parallel()

	uc, states, runner, _ := newDialogFixture()
	reply, handled, err := uc.HandleText(context.Background(), 7, "-100123/5")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if handled || reply != "" {
		t.Fatalf("expected text to fall through, got handled=%v reply=%q", handled, reply)
	}
	if states.has(7) {
		t.Fatalf("no state must be created for idle users")
	}
	if len(runner.reqs) != 0 {
		t.Fatalf("no run must be triggered")
	}
}

func TestDialog_CancelWithoutDialog(t *testing.T) {
	t.Parallel()

	uc, _, _, _ := newDialogFixture()
	reply, err := uc.Cancel(context.Background(), 7)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !strings.Contains(reply, "No active forward operation") {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestDialog_CancelRemovesState(t *testing.T) {
	t.Parallel()

	uc, states, _, _ := newDialogFixture()
	if _, err := uc.Start(context.Background(), 7); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !states.has(7) {
		t.Fatalf("state must exist after Start")
	}
	reply, err := uc.Cancel(context.Background(), 7)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !strings.Contains(reply, "cancelled") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if states.has(7) {
		t.Fatalf("state must be gone after Cancel")
	}
}

func TestDialog_InvalidAnswersKeepState(t *testing.T) {
	t.Parallel()

	uc, states, runner, _ := newDialogFixture()
	ctx := context.Background()
	if _, err := uc.Start(ctx, 7); err != nil {
		t.Fatalf("Start: %v", err)
	}

	reply, handled, err := uc.HandleText(ctx, 7, "not-a-group")
	if err != nil || !handled {
		t.Fatalf("HandleText: handled=%v err=%v", handled, err)
	}
	if !strings.Contains(reply, "Invalid format") {
		t.Fatalf("expected re-prompt, got %q", reply)
	}
	st, err := states.Get(ctx, 7)
	if err != nil {
		t.Fatalf("state must survive invalid input: %v", err)
	}
	if st.Step != model.StepAwaitingSource {
		t.Fatalf("step must not advance on invalid input, got %s", st.Step)
	}
	if len(runner.reqs) != 0 {
		t.Fatalf("no run must be triggered")
	}
}

func TestDialog_CompletedStepsHandOffOnce(t *testing.T) {
	t.Parallel()

	uc, states, runner, bot := newDialogFixture()
	ctx := context.Background()
	if _, err := uc.Start(ctx, 7); err != nil {
		t.Fatalf("Start: %v", err)
	}

	reply, handled, err := uc.HandleText(ctx, 7, "-1001234567890/123")
	if err != nil || !handled {
		t.Fatalf("source step: handled=%v err=%v", handled, err)
	}
	if !strings.Contains(reply, "Source group set") {
		t.Fatalf("unexpected source reply %q", reply)
	}

	if _, _, err := uc.HandleText(ctx, 7, "-1009876543210"); err != nil {
		t.Fatalf("destination step: %v", err)
	}

	if _, _, err := uc.HandleText(ctx, 7, "5-7"); err != nil {
		t.Fatalf("range step: %v", err)
	}

	if len(runner.reqs) != 1 {
		t.Fatalf("expected exactly one handoff, got %d", len(runner.reqs))
	}
	req := runner.reqs[0]
	if req.SourceGroupID != -1001234567890 {
		t.Fatalf("source = %d", req.SourceGroupID)
	}
	if req.TopicID == nil || *req.TopicID != 123 {
		t.Fatalf("topic = %v", req.TopicID)
	}
	if req.DestinationID != -1009876543210 {
		t.Fatalf("destination = %d", req.DestinationID)
	}
	if req.Mode != model.ForwardRange || req.FromID != 5 || req.ToID != 7 {
		t.Fatalf("range = %+v", req)
	}
	if states.has(7) {
		t.Fatalf("state must be absent immediately after handoff")
	}
	if len(bot.statuses) == 0 {
		t.Fatalf("a status message must be created for the run")
	}
}

func TestDialog_AllModeRequest(t *testing.T) {
	t.Parallel()

	uc, _, runner, _ := newDialogFixture()
	ctx := context.Background()
	if _, err := uc.Start(ctx, 9); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, answer := range []string{"-100200300", "-100400500", "ALL"} {
		if _, _, err := uc.HandleText(ctx, 9, answer); err != nil {
			t.Fatalf("HandleText(%q): %v", answer, err)
		}
	}
	if len(runner.reqs) != 1 {
		t.Fatalf("expected one handoff, got %d", len(runner.reqs))
	}
	if runner.reqs[0].Mode != model.ForwardAll {
		t.Fatalf("mode = %s", runner.reqs[0].Mode)
	}
	if runner.reqs[0].TopicID != nil {
		t.Fatalf("topic must be absent")
	}
}

func TestDialog_GateBlocksBeforeState(t *testing.T) {
	t.Parallel()

	states := newMemStateRepo()
	subs := newMemSubRepo() // empty: nobody subscribed
	gate := NewSubscriptionUseCase(subs, false)
	uc := NewDialogUseCase(states, gate, &recordingRunner{}, inlineRunner{}, &fakeBot{})

	reply, err := uc.Start(context.Background(), 7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.Contains(reply, "subscription") {
		t.Fatalf("expected gate message, got %q", reply)
	}
	if states.has(7) {
		t.Fatalf("gated user must not get dialog state")
	}
}

func TestDialog_StartOverwritesStaleState(t *testing.T) {
	t.Parallel()

	uc, states, _, _ := newDialogFixture()
	ctx := context.Background()
	if _, err := uc.Start(ctx, 7); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := uc.HandleText(ctx, 7, "-100123"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	// Restart mid-dialog
	if _, err := uc.Start(ctx, 7); err != nil {
		t.Fatalf("Start again: %v", err)
	}
	st, err := states.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.Step != model.StepAwaitingSource || st.SourceGroupID != 0 {
		t.Fatalf("restart must reset the dialog, got %+v", st)
	}
}
