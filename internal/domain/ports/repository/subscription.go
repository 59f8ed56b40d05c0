package repository

import (
	"context"
	"time"
)

// Subscription is the entitlement row consulted by the gate.
type Subscription struct {
	ID        string
	TgID      int64
	PlanName  string
	ExpiresAt time.Time
}

// Active reports whether the subscription is valid at t.
func (s *Subscription) Active(t time.Time) bool {
	return s != nil && s.ExpiresAt.After(t)
}

// SubscriptionRepository looks up entitlements for the gate check.
type SubscriptionRepository interface {
	// FindActiveByTgID returns the unexpired subscription for a Telegram
	// user, or domain.ErrNotFound.
	FindActiveByTgID(ctx context.Context, tgID int64) (*Subscription, error)
}
