package domain

import (
	"context"
	"time"
)

// UserRepository is the user aggregate's data access boundary.
//
// ConsumeCredits and RefundCredits are single atomic statements against the
// store, not read-modify-write, so a reconciliation tick racing a payment
// credit cannot lose an update.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// ConsumeCredits deducts first from the free bucket, remainder from the
	// paid bucket, clamping both at zero, and returns the split.
	ConsumeCredits(ctx context.Context, userID string, seconds int64) (*CreditConsumption, error)
	// RefundCredits reverses a consumption whose paired session write failed.
	RefundCredits(ctx context.Context, userID string, free, paid int64) error
	CreditPaidSeconds(ctx context.Context, userID string, seconds int64) error
	// ResetFreeCredits sets every user's free bucket to seconds and reports
	// how many rows were touched.
	ResetFreeCredits(ctx context.Context, seconds int64) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// Update is compare-and-swap on Session.Version; a concurrent writer
	// surfaces as ErrVersionConflict and the caller re-reads or retries.
	Update(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	// FindOngoingByUser returns the user's session in
	// {unassigned, active, paused}, or nil when there is none.
	FindOngoingByUser(ctx context.Context, userID string) (*Session, error)
	FindLockedByUser(ctx context.Context, userID string) (*Session, error)
	FindByStatus(ctx context.Context, status SessionStatus) ([]*Session, error)
	FindUnassigned(ctx context.Context, limit int) ([]*Session, error)
	FindByTherapist(ctx context.Context, therapistID string, limit int) ([]*Session, error)
	// Claim executes the first-responder protocol as one conditional update:
	// predicate therapist_id IS NULL OR therapist_id = therapistID; on match
	// the session becomes active and owned. A predicate miss returns
	// ErrSessionClaimed without touching the row.
	Claim(ctx context.Context, sessionID, therapistID string, now time.Time) (*Session, error)
	// TopUp adds seconds to remaining_seconds; a locked session becomes
	// active again.
	TopUp(ctx context.Context, sessionID string, seconds int64, now time.Time) error
}

type MessageRepository interface {
	Save(ctx context.Context, msg *Message) error
	FindBySession(ctx context.Context, sessionID string) ([]*Message, error)
}

type TherapistRepository interface {
	Save(ctx context.Context, t *Therapist) error
	FindByID(ctx context.Context, therapistID string) (*Therapist, error)
	FindByName(ctx context.Context, name string) (*Therapist, error)
	// FindSubscribed returns every therapist with at least one push
	// subscription, for unassigned-chat broadcasts.
	FindSubscribed(ctx context.Context) ([]*Therapist, error)
	AddSubscription(ctx context.Context, therapistID string, sub PushSubscription) error
}

type PaymentRepository interface {
	Save(ctx context.Context, p *Payment) error
	FindByReference(ctx context.Context, reference string) (*Payment, error)
	// MarkSuccess flips pending -> success and reports whether this call won
	// the transition, making credit application idempotent.
	MarkSuccess(ctx context.Context, reference string) (bool, error)
	// Reopen flips success -> pending after a failed credit apply so a
	// later retry can win MarkSuccess again.
	Reopen(ctx context.Context, reference string) error
}

type ReferralRepository interface {
	Current(ctx context.Context) (*ReferralCode, error)
	Save(ctx context.Context, code *ReferralCode) error
}

// Clock is injectable so the worker and the state machine are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// EventPublisher fans out state changes to subscribed clients. Delivery is
// best effort: implementations log failures and never return them into the
// transition that triggered the publish.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID, event string, payload any)
	PublishToTherapistList(ctx context.Context, therapistID, event string, payload any)
}

type PushNotification struct {
	Event     string `json:"event"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PushNotifier delivers device pushes. Best effort, never blocks or fails
// the message-send path.
type PushNotifier interface {
	NotifyTherapist(ctx context.Context, therapistID string, note *PushNotification)
	BroadcastUnassigned(ctx context.Context, note *PushNotification)
}
