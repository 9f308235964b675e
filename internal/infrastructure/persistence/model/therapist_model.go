package model

import (
	"encoding/json"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// TherapistModel stores push subscriptions as a jsonb blob; a therapist
// can hold one per browser or device.
type TherapistModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement;column:id"`
	TherapistID   string    `gorm:"uniqueIndex:idx_therapists_therapist_id;size:36;not null;column:therapist_id"`
	Name          string    `gorm:"uniqueIndex:idx_therapists_name;size:50;not null;column:name"`
	PasswordHash  string    `gorm:"size:100;not null;column:password_hash"`
	Subscriptions string    `gorm:"type:jsonb;default:'[]';column:subscriptions"`
	CreatedAt     time.Time `gorm:"autoCreateTime;not null;column:created_at"`
}

func (TherapistModel) TableName() string { return "therapists" }

func (m *TherapistModel) ToDomain() *domain.Therapist {
	t := &domain.Therapist{
		TherapistID:  m.TherapistID,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
	if m.Subscriptions != "" {
		// a corrupt blob just means no push targets
		_ = json.Unmarshal([]byte(m.Subscriptions), &t.Subscriptions)
	}
	return t
}

func ToTherapistModel(d *domain.Therapist) *TherapistModel {
	subs := []byte("[]")
	if len(d.Subscriptions) > 0 {
		if data, err := json.Marshal(d.Subscriptions); err == nil {
			subs = data
		}
	}
	return &TherapistModel{
		TherapistID:   d.TherapistID,
		Name:          d.Name,
		PasswordHash:  d.PasswordHash,
		Subscriptions: string(subs),
		CreatedAt:     d.CreatedAt,
	}
}
