package model

import (
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type ReferralCodeModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;column:id"`
	ReferralID  string    `gorm:"uniqueIndex:idx_referral_codes_referral_id;size:36;not null;column:referral_id"`
	CurrentCode string    `gorm:"uniqueIndex:idx_referral_codes_code;size:16;not null;column:current_code"`
	UsageCount  int       `gorm:"not null;default:0;column:usage_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime;not null;column:created_at"`
}

func (ReferralCodeModel) TableName() string { return "referral_codes" }

func (m *ReferralCodeModel) ToDomain() *domain.ReferralCode {
	return &domain.ReferralCode{
		ReferralID:  m.ReferralID,
		CurrentCode: m.CurrentCode,
		UsageCount:  m.UsageCount,
		CreatedAt:   m.CreatedAt,
	}
}

func ToReferralCodeModel(d *domain.ReferralCode) *ReferralCodeModel {
	return &ReferralCodeModel{
		ReferralID:  d.ReferralID,
		CurrentCode: d.CurrentCode,
		UsageCount:  d.UsageCount,
		CreatedAt:   d.CreatedAt,
	}
}
