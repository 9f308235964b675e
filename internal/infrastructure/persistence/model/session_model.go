package model

import (
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// SessionModel keeps therapist_id nullable so the claim predicate
// (therapist_id IS NULL OR therapist_id = claimant) works as a single
// conditional update.
type SessionModel struct {
	ID                     uint       `gorm:"primaryKey;autoIncrement;column:id"`
	SessionID              string     `gorm:"uniqueIndex:idx_sessions_session_id;size:36;not null;column:session_id"`
	UserID                 string     `gorm:"index:idx_sessions_user_id;size:36;not null;column:user_id"`
	TherapistID            *string    `gorm:"index:idx_sessions_therapist_id;size:36;column:therapist_id"`
	Status                 string     `gorm:"index:idx_sessions_status;size:16;not null;column:status"`
	RemainingSeconds       int64      `gorm:"not null;default:0;column:remaining_seconds"`
	AssignedAt             *time.Time `gorm:"column:assigned_at"`
	LastUserMessageAt      *time.Time `gorm:"column:last_user_message_at"`
	LastTherapistMessageAt *time.Time `gorm:"column:last_therapist_message_at"`
	LastActiveTimestamp    *time.Time `gorm:"column:last_active_timestamp"`
	Version                int64      `gorm:"not null;default:0;column:version"`
	CreatedAt              time.Time  `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime;column:updated_at"`
}

func (SessionModel) TableName() string { return "sessions" }

func (m *SessionModel) ToDomain() *domain.Session {
	s := &domain.Session{
		SessionID:              m.SessionID,
		UserID:                 m.UserID,
		Status:                 domain.SessionStatus(m.Status),
		RemainingSeconds:       m.RemainingSeconds,
		AssignedAt:             m.AssignedAt,
		LastUserMessageAt:      m.LastUserMessageAt,
		LastTherapistMessageAt: m.LastTherapistMessageAt,
		LastActiveTimestamp:    m.LastActiveTimestamp,
		Version:                m.Version,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
	if m.TherapistID != nil {
		s.TherapistID = *m.TherapistID
	}
	return s
}

func ToSessionModel(d *domain.Session) *SessionModel {
	m := &SessionModel{
		SessionID:              d.SessionID,
		UserID:                 d.UserID,
		Status:                 string(d.Status),
		RemainingSeconds:       d.RemainingSeconds,
		AssignedAt:             d.AssignedAt,
		LastUserMessageAt:      d.LastUserMessageAt,
		LastTherapistMessageAt: d.LastTherapistMessageAt,
		LastActiveTimestamp:    d.LastActiveTimestamp,
		Version:                d.Version,
		CreatedAt:              d.CreatedAt,
	}
	if d.TherapistID != "" {
		id := d.TherapistID
		m.TherapistID = &id
	}
	return m
}
