// File: internal/usecase/forward_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/adapter"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// StatusReporter edits the single status message owned by a run.
type StatusReporter interface {
	Update(ctx context.Context, text string) error
}

// ForwardUseCase is the relocation engine: it resolves reachability,
// enumerates target message ids, forwards them one at a time with a
// self-imposed delay, waits out rate limits, and keeps the status
// message current. Partial progress is permanent; a run is never
// transactional.
type ForwardUseCase struct {
	messenger adapter.Messenger
	runs      repository.ForwardRunRepository // optional, best-effort audit

	historyLimit  int
	throttle      time.Duration
	progressEvery int

	now func() time.Time
}

func NewForwardUseCase(messenger adapter.Messenger, runs repository.ForwardRunRepository, historyLimit int, throttle time.Duration) *ForwardUseCase {
	if historyLimit <= 0 {
		historyLimit = 1000
	}
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}
	return &ForwardUseCase{
		messenger:     messenger,
		runs:          runs,
		historyLimit:  historyLimit,
		throttle:      throttle,
		progressEvery: 10,
		now:           time.Now,
	}
}

// Run executes one fully-collected request. The returned report is
// valid even when err != nil: counters reflect whatever completed
// before the abort.
func (uc *ForwardUseCase) Run(ctx context.Context, req *model.ForwardRequest, status StatusReporter) (*model.ForwardReport, error) {
	rep := &model.ForwardReport{}
	started := uc.now()

	if _, err := uc.messenger.ResolveChat(ctx, req.SourceGroupID); err != nil {
		_ = status.Update(ctx, fmt.Sprintf(
			"❌ Cannot access source group: %s\n\nMake sure the account is a member of the group and has permission.",
			truncate(err.Error(), 100)))
		uc.audit(req, rep, model.RunAborted, started)
		return rep, fmt.Errorf("resolve source %d: %w", req.SourceGroupID, err)
	}
	if _, err := uc.messenger.ResolveChat(ctx, req.DestinationID); err != nil {
		_ = status.Update(ctx, fmt.Sprintf(
			"❌ Cannot access destination: %s\n\nMake sure the account is a member of the channel/group and has permission.",
			truncate(err.Error(), 100)))
		uc.audit(req, rep, model.RunAborted, started)
		return rep, fmt.Errorf("resolve destination %d: %w", req.DestinationID, err)
	}

	var runErr error
	switch req.Mode {
	case model.ForwardAll:
		runErr = uc.runAll(ctx, req, rep, status)
	default:
		runErr = uc.runRange(ctx, req, rep, status)
	}
	if runErr != nil {
		_ = status.Update(ctx, fmt.Sprintf("❌ Error during forwarding: %s\n\nForwarded so far: %d\nFailed: %d",
			truncate(runErr.Error(), 200), rep.Succeeded, rep.Failed))
		uc.audit(req, rep, model.RunAborted, started)
		return rep, runErr
	}

	uc.audit(req, rep, model.RunCompleted, started)
	_ = status.Update(ctx, uc.finalText(req, rep))
	return rep, nil
}

func (uc *ForwardUseCase) runAll(ctx context.Context, req *model.ForwardRequest, rep *model.ForwardReport, status StatusReporter) error {
	_ = status.Update(ctx, "⚠️ Forwarding all messages...\nThis may take a while. Processing...")

	msgs, err := uc.messenger.History(ctx, req.SourceGroupID, uc.historyLimit)
	if err != nil {
		return fmt.Errorf("enumerate history: %w", err)
	}
	rep.Truncated = len(msgs) >= uc.historyLimit

	for _, msg := range msgs {
		if req.TopicID != nil && !msg.InTopic(*req.TopicID) {
			continue
		}
		rep.Attempted++
		if err := uc.forwardOne(ctx, req, msg.ID, rep); err != nil {
			return err
		}
		if rep.Succeeded > 0 && rep.Succeeded%uc.progressEvery == 0 {
			_ = status.Update(ctx, fmt.Sprintf("🔄 Forwarded %d messages...\nLast message ID: %d", rep.Succeeded, rep.LastMsgID))
		}
	}
	return nil
}

func (uc *ForwardUseCase) runRange(ctx context.Context, req *model.ForwardRequest, rep *model.ForwardReport, status StatusReporter) error {
	_ = status.Update(ctx, fmt.Sprintf("🔄 Forwarding messages %d to %d...\nProcessing...", req.FromID, req.ToID))

	total := req.ToID - req.FromID + 1
	for id := req.FromID; id <= req.ToID; id++ {
		rep.Attempted++

		// Topic scoping needs a per-id fetch; a fetch failure or a
		// mismatch counts as failed and the id is skipped, no retry.
		if req.TopicID != nil {
			msg, err := uc.messenger.GetMessage(ctx, req.SourceGroupID, id)
			if err != nil {
				rep.Failed++
				continue
			}
			if !msg.InTopic(*req.TopicID) {
				rep.Failed++
				continue
			}
		}

		if err := uc.forwardOne(ctx, req, id, rep); err != nil {
			return err
		}
		if rep.Succeeded > 0 && rep.Succeeded%uc.progressEvery == 0 {
			_ = status.Update(ctx, fmt.Sprintf("🔄 Forwarded %d/%d messages...", rep.Succeeded, total))
		}
	}
	return nil
}

// forwardOne issues a single relocation call, waiting out rate limits
// and retrying the same id. Every other failure is recorded and the run
// moves on. The self-imposed delay runs after every call, success or
// not. A non-nil return means the run itself must abort.
func (uc *ForwardUseCase) forwardOne(ctx context.Context, req *model.ForwardRequest, msgID int, rep *model.ForwardReport) error {
	for {
		err := uc.messenger.Forward(ctx, req.SourceGroupID, req.DestinationID, msgID)
		var rl *adapter.RateLimitedError
		if errors.As(err, &rl) {
			if werr := sleepCtx(ctx, rl.RetryAfter); werr != nil {
				return werr
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.Failed++
		} else {
			rep.Succeeded++
			rep.LastMsgID = msgID
		}
		return sleepCtx(ctx, uc.throttle)
	}
}

func (uc *ForwardUseCase) finalText(req *model.ForwardRequest, rep *model.ForwardReport) string {
	if req.Mode == model.ForwardAll {
		last := "N/A"
		if rep.LastMsgID != 0 {
			last = fmt.Sprintf("%d", rep.LastMsgID)
		}
		text := fmt.Sprintf("✅ Forward completed!\n\n📊 Stats:\n• Forwarded: %d\n• Failed: %d\n• Last message ID: %s",
			rep.Succeeded, rep.Failed, last)
		if rep.Truncated {
			text += fmt.Sprintf("\n\n⚠️ Only the %d most recent messages were scanned.", uc.historyLimit)
		}
		return text
	}
	return fmt.Sprintf("✅ Forward completed!\n\n📊 Stats:\n• Forwarded: %d\n• Failed: %d\n• Range: %d to %d",
		rep.Succeeded, rep.Failed, req.FromID, req.ToID)
}

// audit persists the run record when a repository is wired. Failures
// here never affect the run outcome.
func (uc *ForwardUseCase) audit(req *model.ForwardRequest, rep *model.ForwardReport, st model.ForwardRunStatus, started time.Time) {
	if uc.runs == nil {
		return
	}
	run := &model.ForwardRun{
		ID:            uuid.NewString(),
		RunID:         ulid.Make().String(),
		UserID:        req.UserID,
		SourceGroupID: req.SourceGroupID,
		TopicID:       req.TopicID,
		DestinationID: req.DestinationID,
		Mode:          req.Mode,
		Succeeded:     rep.Succeeded,
		Failed:        rep.Failed,
		Status:        st,
		StartedAt:     started,
		FinishedAt:    uc.now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = uc.runs.Save(ctx, run)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
