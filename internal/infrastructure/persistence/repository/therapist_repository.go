package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"gorm.io/gorm"
)

type TherapistRepository struct {
	db *gorm.DB
}

func NewTherapistRepository(db *gorm.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

func (r *TherapistRepository) Save(ctx context.Context, t *domain.Therapist) error {
	m := model.ToTherapistModel(t)
	if err := r.db.WithContext(ctx).
		Where("therapist_id = ?", t.TherapistID).
		Assign(m).
		FirstOrCreate(&model.TherapistModel{}).Error; err != nil {
		return fmt.Errorf("failed to save therapist: %w", err)
	}
	return nil
}

func (r *TherapistRepository) FindByID(ctx context.Context, therapistID string) (*domain.Therapist, error) {
	var m model.TherapistModel
	if err := r.db.WithContext(ctx).Where("therapist_id = ?", therapistID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTherapistNotFound
		}
		return nil, fmt.Errorf("failed to find therapist: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *TherapistRepository) FindByName(ctx context.Context, name string) (*domain.Therapist, error) {
	var m model.TherapistModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTherapistNotFound
		}
		return nil, fmt.Errorf("failed to find therapist: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *TherapistRepository) FindSubscribed(ctx context.Context) ([]*domain.Therapist, error) {
	var models []*model.TherapistModel
	if err := r.db.WithContext(ctx).
		Where("jsonb_array_length(subscriptions) > 0").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find subscribed therapists: %w", err)
	}
	therapists := make([]*domain.Therapist, 0, len(models))
	for _, m := range models {
		therapists = append(therapists, m.ToDomain())
	}
	return therapists, nil
}

// AddSubscription appends a push subscription unless the endpoint is
// already registered.
func (r *TherapistRepository) AddSubscription(ctx context.Context, therapistID string, sub domain.PushSubscription) error {
	t, err := r.FindByID(ctx, therapistID)
	if err != nil {
		return err
	}
	for _, existing := range t.Subscriptions {
		if existing.Endpoint == sub.Endpoint {
			return nil
		}
	}
	t.Subscriptions = append(t.Subscriptions, sub)
	return r.Save(ctx, t)
}
