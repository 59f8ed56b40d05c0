package application

import (
	"context"
	"fmt"

	"telegram-forward-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Methods return strings so the Telegram adapter just forwards them to
// the chat.
type BotFacade struct {
	DialogUC *usecase.DialogUseCase
}

func NewBotFacade(dialogUC *usecase.DialogUseCase) *BotFacade {
	return &BotFacade{DialogUC: dialogUC}
}

// HandleStart returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, username string) (string, error) {
	return fmt.Sprintf("Hello %s!\nI can forward batches of messages between chats.\nUse /forward to begin, /help for details.", username), nil
}

// HandleHelp returns the command list.
func (b *BotFacade) HandleHelp(ctx context.Context) (string, error) {
	return "Commands:\n/forward - forward messages from a group or topic\n/cancel - abort an in-progress /forward dialog\n/help - this text", nil
}

// HandleForward starts the forward dialog for the user.
func (b *BotFacade) HandleForward(ctx context.Context, tgID int64) (string, error) {
	if b.DialogUC == nil {
		return "", fmt.Errorf("dialog usecase not available")
	}
	return b.DialogUC.Start(ctx, tgID)
}

// HandleCancel aborts the user's dialog, if any.
func (b *BotFacade) HandleCancel(ctx context.Context, tgID int64) (string, error) {
	if b.DialogUC == nil {
		return "", fmt.Errorf("dialog usecase not available")
	}
	return b.DialogUC.Cancel(ctx, tgID)
}

// HandleText routes a plain-text message into the dialog. handled=false
// means no dialog is open and other handlers may consume the text.
func (b *BotFacade) HandleText(ctx context.Context, tgID int64, text string) (string, bool, error) {
	if b.DialogUC == nil {
		return "", false, fmt.Errorf("dialog usecase not available")
	}
	return b.DialogUC.HandleText(ctx, tgID, text)
}
