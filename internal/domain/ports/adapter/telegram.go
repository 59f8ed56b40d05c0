package adapter

import "context"

// TelegramBotAdapter is what usecases need from the bot UI side:
// plain replies plus a single editable status message per run.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
	// SendStatus creates the run's status message and returns its id.
	SendStatus(ctx context.Context, telegramID int64, text string) (int, error)
	// EditStatus rewrites a previously created status message.
	EditStatus(ctx context.Context, telegramID int64, messageID int, text string) error
}
