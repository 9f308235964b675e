package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Current returns the rotating signup code, seeding a fresh one on first
// use so deployments need no manual bootstrap row.
func (r *ReferralRepository) Current(ctx context.Context) (*domain.ReferralCode, error) {
	var m model.ReferralCodeModel
	err := r.db.WithContext(ctx).Order("created_at asc").First(&m).Error
	if err == nil {
		return m.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find referral code: %w", err)
	}

	code := &domain.ReferralCode{
		ReferralID:  uuid.New().String(),
		CurrentCode: domain.GenerateReferralCode(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(model.ToReferralCodeModel(code)).Error; err != nil {
		return nil, fmt.Errorf("failed to seed referral code: %w", err)
	}
	return code, nil
}

func (r *ReferralRepository) Save(ctx context.Context, code *domain.ReferralCode) error {
	res := r.db.WithContext(ctx).Model(&model.ReferralCodeModel{}).
		Where("referral_id = ?", code.ReferralID).
		Updates(map[string]any{
			"current_code": code.CurrentCode,
			"usage_count":  code.UsageCount,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save referral code: %w", res.Error)
	}
	return nil
}
