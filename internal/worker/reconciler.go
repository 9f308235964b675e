package worker

import (
	"context"
	"log"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// Reconciler turns elapsed wall-clock time on active sessions into billed
// seconds. One instance per deployment: the loop assumes it is the only
// writer of its kind, and horizontal scaling would need leader election.
type Reconciler struct {
	sessions       domain.SessionRepository
	ledger         *application.CreditLedger
	events         domain.EventPublisher
	clock          domain.Clock
	therapistDelay time.Duration
	userInactive   time.Duration
	interval       time.Duration
}

func NewReconciler(
	sessions domain.SessionRepository,
	ledger *application.CreditLedger,
	events domain.EventPublisher,
	clock domain.Clock,
	therapistDelay, userInactive, interval time.Duration,
) *Reconciler {
	return &Reconciler{
		sessions:       sessions,
		ledger:         ledger,
		events:         events,
		clock:          clock,
		therapistDelay: therapistDelay,
		userInactive:   userInactive,
		interval:       interval,
	}
}

// Run ticks on a fixed interval until the context is cancelled. The first
// tick fires immediately.
func (r *Reconciler) Run(ctx context.Context) {
	log.Printf("starting session reconciler (interval %s)", r.interval)
	r.Tick(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("session reconciler stopped")
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick scans every active session once. Only active sessions carry a
// lastActiveTimestamp, so paused and locked sessions can never be billed
// twice. A failing session is logged and skipped, never aborting the scan.
func (r *Reconciler) Tick(ctx context.Context) {
	now := r.clock.Now()
	active, err := r.sessions.FindByStatus(ctx, domain.StatusActive)
	if err != nil {
		log.Printf("[ERROR] list active sessions: %v", err)
		return
	}
	for _, s := range active {
		if err := r.reconcile(ctx, s, now); err != nil {
			log.Printf("[ERROR] reconcile session %s: %v", s.SessionID, err)
		}
	}
}

// reconcile applies the first matching rule, in strict priority order:
// therapist-delay pause, user-inactivity pause, normal countdown. Whatever
// fired, a session billed down to zero locks.
func (r *Reconciler) reconcile(ctx context.Context, s *domain.Session, now time.Time) error {
	// Rule 1: the user is owed a reply and has waited past the threshold.
	if s.LastUserMessageAt != nil &&
		(s.LastTherapistMessageAt == nil || s.LastTherapistMessageAt.Before(*s.LastUserMessageAt)) {
		boundary := s.LastUserMessageAt.Add(r.therapistDelay)
		if !now.Before(boundary) {
			return r.pauseAt(ctx, s, boundary, "therapist_delay")
		}
	}

	// Rule 2: the therapist is owed a reply and the user went quiet.
	if s.LastTherapistMessageAt != nil &&
		(s.LastUserMessageAt == nil || s.LastUserMessageAt.Before(*s.LastTherapistMessageAt)) {
		boundary := s.LastTherapistMessageAt.Add(r.userInactive)
		if !now.Before(boundary) {
			return r.pauseAt(ctx, s, boundary, "user_inactive")
		}
	}

	// Rule 3: normal countdown.
	var split *domain.CreditConsumption
	if s.LastActiveTimestamp != nil {
		elapsed := wholeSeconds(now.Sub(*s.LastActiveTimestamp))
		if elapsed > 0 {
			var err error
			if split, err = r.bill(ctx, s, elapsed); err != nil {
				return err
			}
			ts := now
			s.LastActiveTimestamp = &ts
		}
	} else {
		// Active sessions always carry the timestamp; repair if one slipped
		// through without it.
		ts := now
		s.LastActiveTimestamp = &ts
	}

	if s.RemainingSeconds <= 0 {
		return r.lock(ctx, s, split)
	}
	return r.persist(ctx, s, split)
}

// pauseAt bills from lastActiveTimestamp up to the rule's boundary time
// (never before it) and suspends the session. If the boundary billing
// drains the balance the session locks instead.
func (r *Reconciler) pauseAt(ctx context.Context, s *domain.Session, boundary time.Time, reason string) error {
	var split *domain.CreditConsumption
	if s.LastActiveTimestamp != nil && boundary.After(*s.LastActiveTimestamp) {
		elapsed := wholeSeconds(boundary.Sub(*s.LastActiveTimestamp))
		if elapsed > 0 {
			var err error
			if split, err = r.bill(ctx, s, elapsed); err != nil {
				return err
			}
		}
	}
	if s.RemainingSeconds <= 0 {
		return r.lock(ctx, s, split)
	}
	s.Status = domain.StatusPaused
	s.LastActiveTimestamp = nil
	if err := r.persist(ctx, s, split); err != nil {
		return err
	}
	r.events.Publish(ctx, s.SessionID, "session:paused", map[string]any{"reason": reason})
	return nil
}

func (r *Reconciler) lock(ctx context.Context, s *domain.Session, split *domain.CreditConsumption) error {
	s.Status = domain.StatusLocked
	s.LastActiveTimestamp = nil
	if err := r.persist(ctx, s, split); err != nil {
		return err
	}
	r.events.Publish(ctx, s.SessionID, "session:locked", map[string]any{"reason": "out_of_credits"})
	return nil
}

// bill consumes from the user's buckets first; the in-memory countdown is
// only decremented once the consume committed, so a ledger failure leaves
// remaining_seconds untouched.
func (r *Reconciler) bill(ctx context.Context, s *domain.Session, elapsed int64) (*domain.CreditConsumption, error) {
	split, err := r.ledger.Consume(ctx, s.UserID, elapsed)
	if err != nil {
		return nil, err
	}
	s.RemainingSeconds -= elapsed
	if s.RemainingSeconds < 0 {
		s.RemainingSeconds = 0
	}
	return split, nil
}

// persist writes the session once for the tick. If the optimistic write
// loses to a concurrent transition, the matching bucket consumption is
// refunded so the two aggregates stay aligned; the next tick re-measures
// from the still-set lastActiveTimestamp.
func (r *Reconciler) persist(ctx context.Context, s *domain.Session, split *domain.CreditConsumption) error {
	if err := r.sessions.Update(ctx, s); err != nil {
		if split != nil {
			if rerr := r.ledger.Refund(ctx, s.UserID, split); rerr != nil {
				log.Printf("[ERROR] refund after failed session write %s: %v", s.SessionID, rerr)
			}
		}
		return err
	}
	return nil
}

func wholeSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
