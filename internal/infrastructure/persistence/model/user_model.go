package model

import (
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type UserModel struct {
	ID                uint      `gorm:"primaryKey;autoIncrement;column:id"`
	UserID            string    `gorm:"uniqueIndex:idx_users_user_id;size:36;not null;column:user_id"`
	Username          string    `gorm:"uniqueIndex:idx_users_username;size:50;not null;column:username"`
	PasswordHash      string    `gorm:"size:100;not null;column:password_hash"`
	FreeCreditSeconds int64     `gorm:"not null;default:0;column:free_credit_seconds"`
	PaidCreditSeconds int64     `gorm:"not null;default:0;column:paid_credit_seconds"`
	UnlimitedPlan     bool      `gorm:"not null;default:false;column:unlimited_plan"`
	ReferralCode      string    `gorm:"size:16;column:referral_code"`
	CreatedAt         time.Time `gorm:"autoCreateTime;not null;column:created_at"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		UserID:            m.UserID,
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		FreeCreditSeconds: m.FreeCreditSeconds,
		PaidCreditSeconds: m.PaidCreditSeconds,
		UnlimitedPlan:     m.UnlimitedPlan,
		ReferralCode:      m.ReferralCode,
		CreatedAt:         m.CreatedAt,
	}
}

func ToUserModel(d *domain.User) *UserModel {
	return &UserModel{
		UserID:            d.UserID,
		Username:          d.Username,
		PasswordHash:      d.PasswordHash,
		FreeCreditSeconds: d.FreeCreditSeconds,
		PaidCreditSeconds: d.PaidCreditSeconds,
		UnlimitedPlan:     d.UnlimitedPlan,
		ReferralCode:      d.ReferralCode,
		CreatedAt:         d.CreatedAt,
	}
}
