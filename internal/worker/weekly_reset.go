package worker

import (
	"context"
	"log"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// WeeklyReset restores every user's free bucket to the configured grant at
// Sunday midnight. It is an explicit job with its own clock, started and
// stopped by the process, not a package-level cron.
type WeeklyReset struct {
	users  domain.UserRepository
	amount int64
	clock  domain.Clock
}

func NewWeeklyReset(users domain.UserRepository, amount int64, clock domain.Clock) *WeeklyReset {
	return &WeeklyReset{users: users, amount: amount, clock: clock}
}

// Run sleeps until the next Sunday 00:00 and resets, repeating until the
// context is cancelled.
func (j *WeeklyReset) Run(ctx context.Context) {
	for {
		now := j.clock.Now()
		next := NextSundayMidnight(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := j.RunOnce(ctx); err != nil {
				log.Printf("[ERROR] weekly credit reset: %v", err)
			}
		}
	}
}

// RunOnce performs a single reset.
func (j *WeeklyReset) RunOnce(ctx context.Context) error {
	n, err := j.users.ResetFreeCredits(ctx, j.amount)
	if err != nil {
		return err
	}
	log.Printf("weekly credit reset: %d users back to %d free seconds", n, j.amount)
	return nil
}

// NextSundayMidnight returns the first Sunday 00:00 strictly after now.
func NextSundayMidnight(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := (7 - int(now.Weekday())) % 7
	next := midnight.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
