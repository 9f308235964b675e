package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"gorm.io/gorm"
)

var ongoingStatuses = []string{
	string(domain.StatusUnassigned),
	string(domain.StatusActive),
	string(domain.StatusPaused),
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	if err := r.db.WithContext(ctx).Create(model.ToSessionModel(s)).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Update is compare-and-swap on the version column so an HTTP transition
// and a reconciliation tick cannot silently clobber each other.
func (r *SessionRepository) Update(ctx context.Context, s *domain.Session) error {
	m := model.ToSessionModel(s)
	res := r.db.WithContext(ctx).Model(&model.SessionModel{}).
		Where("session_id = ? AND version = ?", s.SessionID, s.Version).
		Updates(map[string]any{
			"therapist_id":              m.TherapistID,
			"status":                    m.Status,
			"remaining_seconds":         m.RemainingSeconds,
			"assigned_at":               m.AssignedAt,
			"last_user_message_at":      m.LastUserMessageAt,
			"last_therapist_message_at": m.LastTherapistMessageAt,
			"last_active_timestamp":     m.LastActiveTimestamp,
			"version":                   s.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, s.SessionID); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	s.Version++
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	var m model.SessionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *SessionRepository) FindOngoingByUser(ctx context.Context, userID string) (*domain.Session, error) {
	var m model.SessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, ongoingStatuses).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ongoing session: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *SessionRepository) FindLockedByUser(ctx context.Context, userID string) (*domain.Session, error) {
	var m model.SessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.StatusLocked)).
		Order("created_at desc").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find locked session: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *SessionRepository) FindByStatus(ctx context.Context, status domain.SessionStatus) ([]*domain.Session, error) {
	var models []*model.SessionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	return toDomainSessions(models), nil
}

func (r *SessionRepository) FindUnassigned(ctx context.Context, limit int) ([]*domain.Session, error) {
	var models []*model.SessionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusUnassigned)).
		Order("created_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find unassigned sessions: %w", err)
	}
	return toDomainSessions(models), nil
}

func (r *SessionRepository) FindByTherapist(ctx context.Context, therapistID string, limit int) ([]*domain.Session, error) {
	var models []*model.SessionModel
	if err := r.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("updated_at desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find therapist sessions: %w", err)
	}
	return toDomainSessions(models), nil
}

// Claim is the first-responder protocol: one conditional update whose
// predicate only matches an unowned session or the current owner. Losing
// the race leaves the row untouched and surfaces ErrSessionClaimed.
// assigned_at and last_active_timestamp keep their first value on an
// owner's re-claim.
func (r *SessionRepository) Claim(ctx context.Context, sessionID, therapistID string, now time.Time) (*domain.Session, error) {
	res := r.db.WithContext(ctx).Model(&model.SessionModel{}).
		Where("session_id = ? AND (therapist_id IS NULL OR therapist_id = ?)", sessionID, therapistID).
		Updates(map[string]any{
			"therapist_id":          therapistID,
			"assigned_at":           gorm.Expr("COALESCE(assigned_at, ?)", now),
			"status":                string(domain.StatusActive),
			"last_active_timestamp": gorm.Expr("COALESCE(last_active_timestamp, ?)", now),
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the session does not exist or another therapist owns it.
		if _, err := r.FindByID(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionClaimed
	}
	return r.FindByID(ctx, sessionID)
}

// topUpQuery credits a session in place; a locked session comes back
// active with its timer running from now.
const topUpQuery = `
UPDATE sessions SET
    remaining_seconds = remaining_seconds + ?,
    last_active_timestamp = CASE
        WHEN status = 'locked' AND last_active_timestamp IS NULL THEN ?
        ELSE last_active_timestamp
    END,
    status = CASE WHEN status = 'locked' THEN 'active' ELSE status END,
    version = version + 1,
    updated_at = ?
WHERE session_id = ?
`

func (r *SessionRepository) TopUp(ctx context.Context, sessionID string, seconds int64, now time.Time) error {
	res := r.db.WithContext(ctx).Exec(topUpQuery, seconds, now, now, sessionID)
	if res.Error != nil {
		return fmt.Errorf("failed to top up session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func toDomainSessions(models []*model.SessionModel) []*domain.Session {
	sessions := make([]*domain.Session, len(models))
	for i, m := range models {
		sessions[i] = m.ToDomain()
	}
	return sessions
}
