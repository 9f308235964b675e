package domain

import (
	"math/rand"
	"time"
)

type SessionStatus string

const (
	StatusUnassigned SessionStatus = "unassigned"
	StatusActive     SessionStatus = "active"
	StatusPaused     SessionStatus = "paused"
	StatusLocked     SessionStatus = "locked"
	// StatusExpired is stored and recognized but no transition produces it.
	StatusExpired SessionStatus = "expired"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderTherapist Sender = "therapist"
)

// User carries the two credit buckets. Buckets are mutated only through
// UserRepository's atomic operations, never by loading and re-saving.
type User struct {
	UserID            string
	Username          string
	PasswordHash      string
	FreeCreditSeconds int64
	PaidCreditSeconds int64
	UnlimitedPlan     bool
	ReferralCode      string
	CreatedAt         time.Time
}

// TotalCreditSeconds is the amount a fresh or resumed session starts with.
func (u *User) TotalCreditSeconds() int64 {
	return u.FreeCreditSeconds + u.PaidCreditSeconds
}

// Session is the aggregate root of the metering state machine.
//
// remaining_seconds is authoritative for the countdown. The three
// timestamps let the worker compute elapsed time when pausing or resuming
// instead of writing the row every second.
type Session struct {
	SessionID              string
	UserID                 string
	TherapistID            string // empty until claimed, then permanent
	Status                 SessionStatus
	RemainingSeconds       int64
	AssignedAt             *time.Time
	LastUserMessageAt      *time.Time
	LastTherapistMessageAt *time.Time
	LastActiveTimestamp    *time.Time // non-nil iff Status == StatusActive
	Version                int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Claimed reports whether a therapist owns this session's replies.
func (s *Session) Claimed() bool {
	return s.TherapistID != ""
}

// Blocked reports whether messages are refused in the current status.
func (s *Session) Blocked() bool {
	return s.Status == StatusLocked || s.Status == StatusExpired
}

// Ongoing reports whether this session counts toward the one-per-user
// exclusivity rule. Locked sessions coexist pending a top-up.
func (s *Session) Ongoing() bool {
	switch s.Status {
	case StatusUnassigned, StatusActive, StatusPaused:
		return true
	}
	return false
}

type Message struct {
	MessageID string
	SessionID string
	Sender    Sender
	Text      string
	CreatedAt time.Time
}

type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

type Therapist struct {
	TherapistID   string
	Name          string
	PasswordHash  string
	Subscriptions []PushSubscription
	CreatedAt     time.Time
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type Payment struct {
	PaymentID       string
	UserID          string
	Amount          int64
	Provider        string
	Reference       string
	Status          PaymentStatus
	CreditedSeconds int64
	SessionID       string // optional direct session top-up
	CreatedAt       time.Time
}

// ReferralCode is the single rotating signup code. The code rotates once
// its usage count reaches the limit.
type ReferralCode struct {
	ReferralID  string
	CurrentCode string
	UsageCount  int
	CreatedAt   time.Time
}

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode produces a new 8-character rotating code.
func GenerateReferralCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = referralAlphabet[rand.Intn(len(referralAlphabet))]
	}
	return string(b)
}

// CreditConsumption is the split returned by a bucket decrement. Under
// correct accounting Remainder is zero.
type CreditConsumption struct {
	FreeConsumed int64
	PaidConsumed int64
	Remainder    int64
}
