// File: internal/usecase/dialog_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/model"
	"telegram-forward-bot/internal/domain/ports/adapter"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// SubscriptionGate is consulted once per /forward, before any dialog
// state exists.
type SubscriptionGate interface {
	CheckSubscription(ctx context.Context, tgID int64) error
}

// ForwardRunner runs one fully-collected request. Implemented by
// ForwardUseCase.
type ForwardRunner interface {
	Run(ctx context.Context, req *model.ForwardRequest, status StatusReporter) (*model.ForwardReport, error)
}

// TaskRunner schedules a run off the update-handling path so one long
// run never blocks other users' dialogs.
type TaskRunner interface {
	Submit(task func(ctx context.Context) error) error
}

const (
	sourcePrompt = "📤 Forward Messages\n\n" +
		"Send me the source group ID with topic ID in this format:\n" +
		"-1001234567890/123\n\n" +
		"Or just the group ID to forward from the main chat:\n" +
		"-1001234567890\n\n" +
		"Send /cancel to cancel this operation."

	destinationPrompt = "Now send me the destination channel/group ID:\n" +
		"-1001234567890\n\n" +
		"Send /cancel to cancel."

	rangePrompt = "Now send me the message range:\n\n" +
		"Options:\n" +
		"• all - forward every message\n" +
		"• 1-100 - forward messages with IDs 1 to 100\n" +
		"• 50 - forward only message ID 50\n\n" +
		"Send /cancel to cancel."

	invalidSourceReply = "❌ Invalid format. Send the group ID with topic ID:\n" +
		"-1001234567890/123\n\nOr just the group ID:\n-1001234567890"

	invalidDestinationReply = "❌ Invalid channel ID. Send a valid channel/group ID:\n-1001234567890"

	invalidRangeReply = "❌ Invalid format. Send:\n• all - for all messages\n• 1-100 - for a range\n• 50 - for a single message"
)

// DialogUseCase drives the per-user forward dialog: it owns the state
// lifecycle and hands completed requests to the engine exactly once.
type DialogUseCase struct {
	states repository.DialogStateRepository
	gate   SubscriptionGate
	runner ForwardRunner
	tasks  TaskRunner
	bot    adapter.TelegramBotAdapter
}

func NewDialogUseCase(states repository.DialogStateRepository, gate SubscriptionGate, runner ForwardRunner, tasks TaskRunner, bot adapter.TelegramBotAdapter) *DialogUseCase {
	return &DialogUseCase{states: states, gate: gate, runner: runner, tasks: tasks, bot: bot}
}

// Start begins a dialog for the user, overwriting any stale one. The
// gate runs first; a gated user gets a reply and no state is created.
func (uc *DialogUseCase) Start(ctx context.Context, tgID int64) (string, error) {
	if err := uc.gate.CheckSubscription(ctx, tgID); err != nil {
		if errors.Is(err, domain.ErrSubscriptionRequired) {
			return "⛔ You need an active subscription to use /forward.", nil
		}
		return "", fmt.Errorf("subscription check: %w", err)
	}
	if err := uc.states.Set(ctx, tgID, model.NewDialogState()); err != nil {
		return "", fmt.Errorf("create dialog state: %w", err)
	}
	return sourcePrompt, nil
}

// Cancel aborts an in-progress dialog, reporting whether there was one.
func (uc *DialogUseCase) Cancel(ctx context.Context, tgID int64) (string, error) {
	_, err := uc.states.Get(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			return "No active forward operation to cancel.", nil
		}
		return "", err
	}
	if err := uc.states.Clear(ctx, tgID); err != nil {
		return "", err
	}
	return "✅ Forward operation cancelled.", nil
}

// HandleText consumes one plain-text answer. handled=false means the
// user has no dialog in flight and the text belongs to someone else.
// Invalid answers re-prompt without touching state.
func (uc *DialogUseCase) HandleText(ctx context.Context, tgID int64, text string) (reply string, handled bool, err error) {
	state, err := uc.states.Get(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	switch state.Step {
	case model.StepAwaitingSource:
		groupID, topicID, ok := ParseGroupTopic(text)
		if !ok {
			return invalidSourceReply, true, nil
		}
		state.SourceGroupID = groupID
		state.TopicID = topicID
		state.Step = model.StepAwaitingDestination
		if err := uc.states.Set(ctx, tgID, state); err != nil {
			return "", true, err
		}
		topicInfo := ""
		if topicID != nil {
			topicInfo = fmt.Sprintf(" (Topic ID: %d)", *topicID)
		}
		return fmt.Sprintf("✅ Source group set: %d%s\n\n%s", groupID, topicInfo, destinationPrompt), true, nil

	case model.StepAwaitingDestination:
		destID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return invalidDestinationReply, true, nil
		}
		state.DestinationID = destID
		state.Step = model.StepAwaitingRange
		if err := uc.states.Set(ctx, tgID, state); err != nil {
			return "", true, err
		}
		return fmt.Sprintf("✅ Destination set: %d\n\n%s", destID, rangePrompt), true, nil

	case model.StepAwaitingRange:
		rng, ok := ParseMessageRange(text)
		if !ok {
			return invalidRangeReply, true, nil
		}
		req := &model.ForwardRequest{
			UserID:        tgID,
			SourceGroupID: state.SourceGroupID,
			TopicID:       state.TopicID,
			DestinationID: state.DestinationID,
			Mode:          model.ForwardRange,
			FromID:        rng.From,
			ToID:          rng.To,
		}
		if rng.All {
			req.Mode = model.ForwardAll
		}
		// Handoff is fire-and-forget: state is gone whatever the run does.
		if err := uc.states.Clear(ctx, tgID); err != nil {
			return "", true, err
		}
		return "", true, uc.launch(ctx, req)
	}
	return "", false, nil
}

// launch creates the status message and schedules the run.
func (uc *DialogUseCase) launch(ctx context.Context, req *model.ForwardRequest) error {
	statusID, err := uc.bot.SendStatus(ctx, req.UserID, "🔄 Starting forward process...")
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}
	status := &statusEditor{bot: uc.bot, chatID: req.UserID, msgID: statusID}
	err = uc.tasks.Submit(func(runCtx context.Context) error {
		_, runErr := uc.runner.Run(runCtx, req, status)
		return runErr
	})
	if err != nil {
		_ = uc.bot.EditStatus(ctx, req.UserID, statusID, "❌ Forward could not be started: the bot is busy. Try again later.")
		return fmt.Errorf("schedule forward run: %w", err)
	}
	return nil
}

// statusEditor binds the engine's StatusReporter to one chat message.
type statusEditor struct {
	bot    adapter.TelegramBotAdapter
	chatID int64
	msgID  int
}

func (s *statusEditor) Update(ctx context.Context, text string) error {
	return s.bot.EditStatus(ctx, s.chatID, s.msgID, text)
}
