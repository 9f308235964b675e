package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	m := model.ToUserModel(u)
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", u.UserID).
		Assign(m).
		FirstOrCreate(&model.UserModel{}).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var m model.UserModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m model.UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return m.ToDomain(), nil
}

// consumeQuery drains both buckets in one statement. The FOR UPDATE
// subquery pins the row, the SET expressions read the pre-update values,
// and RETURNING hands back both generations so the split can be computed
// without a second round trip.
const consumeQuery = `
UPDATE users AS u SET
    free_credit_seconds = GREATEST(u.free_credit_seconds - ?, 0),
    paid_credit_seconds = GREATEST(u.paid_credit_seconds - GREATEST(? - u.free_credit_seconds, 0), 0)
FROM (
    SELECT id, free_credit_seconds, paid_credit_seconds
    FROM users WHERE user_id = ? FOR UPDATE
) AS prev
WHERE u.id = prev.id
RETURNING prev.free_credit_seconds AS prev_free, prev.paid_credit_seconds AS prev_paid,
          u.free_credit_seconds AS new_free, u.paid_credit_seconds AS new_paid
`

func (r *UserRepository) ConsumeCredits(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
	var row struct {
		PrevFree int64
		PrevPaid int64
		NewFree  int64
		NewPaid  int64
	}
	res := r.db.WithContext(ctx).Raw(consumeQuery, seconds, seconds, userID).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	split := &domain.CreditConsumption{
		FreeConsumed: row.PrevFree - row.NewFree,
		PaidConsumed: row.PrevPaid - row.NewPaid,
	}
	split.Remainder = seconds - split.FreeConsumed - split.PaidConsumed
	return split, nil
}

func (r *UserRepository) RefundCredits(ctx context.Context, userID string, free, paid int64) error {
	res := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"free_credit_seconds": gorm.Expr("free_credit_seconds + ?", free),
			"paid_credit_seconds": gorm.Expr("paid_credit_seconds + ?", paid),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to refund credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CreditPaidSeconds(ctx context.Context, userID string, seconds int64) error {
	res := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("user_id = ?", userID).
		Update("paid_credit_seconds", gorm.Expr("paid_credit_seconds + ?", seconds))
	if res.Error != nil {
		return fmt.Errorf("failed to credit user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ResetFreeCredits(ctx context.Context, seconds int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&model.UserModel{}).
		Update("free_credit_seconds", seconds)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset free credits: %w", res.Error)
	}
	return res.RowsAffected, nil
}
