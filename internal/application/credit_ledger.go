package application

import (
	"context"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// CreditLedger owns every mutation of a user's two time buckets. The
// actual arithmetic happens inside the store so concurrent consumers and
// payment credits cannot lose updates.
type CreditLedger struct {
	users domain.UserRepository
}

func NewCreditLedger(users domain.UserRepository) *CreditLedger {
	return &CreditLedger{users: users}
}

// Consume deducts seconds from the free bucket first, then the paid
// bucket, never driving either below zero. Zero seconds is a no-op.
func (l *CreditLedger) Consume(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
	if seconds < 0 {
		return nil, domain.ErrNegativeSeconds
	}
	if seconds == 0 {
		return &domain.CreditConsumption{}, nil
	}
	split, err := l.users.ConsumeCredits(ctx, userID, seconds)
	if err != nil {
		return nil, fmt.Errorf("consume credits for user %s: %w", userID, err)
	}
	return split, nil
}

// Refund reverses a prior consumption whose paired session write failed,
// so the session row and the buckets cannot silently diverge.
func (l *CreditLedger) Refund(ctx context.Context, userID string, split *domain.CreditConsumption) error {
	if split == nil || (split.FreeConsumed == 0 && split.PaidConsumed == 0) {
		return nil
	}
	if err := l.users.RefundCredits(ctx, userID, split.FreeConsumed, split.PaidConsumed); err != nil {
		return fmt.Errorf("refund credits for user %s: %w", userID, err)
	}
	return nil
}

// Revoke takes back a paid-bucket credit whose paired session top-up
// failed, so the retried apply does not grant the seconds twice.
func (l *CreditLedger) Revoke(ctx context.Context, userID string, seconds int64) error {
	if seconds <= 0 {
		return nil
	}
	if err := l.users.CreditPaidSeconds(ctx, userID, -seconds); err != nil {
		return fmt.Errorf("revoke credit for user %s: %w", userID, err)
	}
	return nil
}

// Credit adds seconds to the paid bucket. Used by the payment path.
func (l *CreditLedger) Credit(ctx context.Context, userID string, seconds int64) error {
	if seconds < 0 {
		return domain.ErrNegativeSeconds
	}
	if seconds == 0 {
		return nil
	}
	if err := l.users.CreditPaidSeconds(ctx, userID, seconds); err != nil {
		return fmt.Errorf("credit user %s: %w", userID, err)
	}
	return nil
}
