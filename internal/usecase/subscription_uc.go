// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-forward-bot/internal/domain"
	"telegram-forward-bot/internal/domain/ports/repository"
)

// SubscriptionUseCase answers the one question the bot asks before a
// dialog starts: may this user run a forward?
type SubscriptionUseCase struct {
	subs repository.SubscriptionRepository
	dev  bool
	now  func() time.Time
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, dev bool) *SubscriptionUseCase {
	return &SubscriptionUseCase{subs: subs, dev: dev, now: time.Now}
}

// CheckSubscription returns nil when the user holds an unexpired
// subscription, domain.ErrSubscriptionRequired when not. Dev mode
// bypasses the gate entirely.
func (uc *SubscriptionUseCase) CheckSubscription(ctx context.Context, tgID int64) error {
	if uc.dev {
		return nil
	}
	sub, err := uc.subs.FindActiveByTgID(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSubscriptionRequired
		}
		return err
	}
	if !sub.Active(uc.now()) {
		return domain.ErrSubscriptionRequired
	}
	return nil
}
