package adapter

import (
	"context"
	"fmt"
	"time"

	"telegram-forward-bot/internal/domain/model"
)

// RateLimitedError is the distinguished rate-limit signal from the
// messaging API. The caller must pause for RetryAfter and retry the same
// call; it is the only retryable failure.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Messenger is the capability surface of the authenticated messaging
// client. Connection, auth and transport live behind it.
type Messenger interface {
	// ResolveChat resolves a conversation id to a reachable chat.
	// Returns domain.ErrNotFound (wrapped) when the chat is unreachable.
	ResolveChat(ctx context.Context, chatID int64) (*model.Chat, error)

	// History returns up to limit most recent messages, newest first.
	History(ctx context.Context, chatID int64, limit int) ([]model.Message, error)

	// GetMessage fetches a single message by id.
	GetMessage(ctx context.Context, chatID int64, msgID int) (*model.Message, error)

	// Forward relocates one message. May return *RateLimitedError.
	Forward(ctx context.Context, fromChatID, toChatID int64, msgID int) error
}
