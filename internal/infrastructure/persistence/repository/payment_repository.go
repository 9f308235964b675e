package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	if err := r.db.WithContext(ctx).Create(model.ToPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	var m model.PaymentModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return m.ToDomain(), nil
}

// MarkSuccess flips pending -> success. Exactly one caller wins the
// transition, which makes downstream credit application idempotent under
// webhook retries and concurrent verifies.
func (r *PaymentRepository) MarkSuccess(ctx context.Context, reference string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("reference = ? AND status = ?", reference, string(domain.PaymentPending)).
		Update("status", string(domain.PaymentSuccess))
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment success: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Reopen reverses MarkSuccess after a failed credit apply, so the next
// webhook delivery or verify can attempt the apply again.
func (r *PaymentRepository) Reopen(ctx context.Context, reference string) error {
	res := r.db.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("reference = ? AND status = ?", reference, string(domain.PaymentSuccess)).
		Update("status", string(domain.PaymentPending))
	if res.Error != nil {
		return fmt.Errorf("failed to reopen payment: %w", res.Error)
	}
	return nil
}
