package model

import (
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type PaymentModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement;column:id"`
	PaymentID       string    `gorm:"uniqueIndex:idx_payments_payment_id;size:36;not null;column:payment_id"`
	UserID          string    `gorm:"index:idx_payments_user_id;size:36;not null;column:user_id"`
	Amount          int64     `gorm:"not null;column:amount"`
	Provider        string    `gorm:"size:20;not null;default:'paystack';column:provider"`
	Reference       string    `gorm:"uniqueIndex:idx_payments_reference;size:64;not null;column:reference"`
	Status          string    `gorm:"size:16;not null;default:'pending';column:status"`
	CreditedSeconds int64     `gorm:"not null;default:0;column:credited_seconds"`
	SessionID       *string   `gorm:"size:36;column:session_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime;not null;column:created_at"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) ToDomain() *domain.Payment {
	p := &domain.Payment{
		PaymentID:       m.PaymentID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		Provider:        m.Provider,
		Reference:       m.Reference,
		Status:          domain.PaymentStatus(m.Status),
		CreditedSeconds: m.CreditedSeconds,
		CreatedAt:       m.CreatedAt,
	}
	if m.SessionID != nil {
		p.SessionID = *m.SessionID
	}
	return p
}

func ToPaymentModel(d *domain.Payment) *PaymentModel {
	m := &PaymentModel{
		PaymentID:       d.PaymentID,
		UserID:          d.UserID,
		Amount:          d.Amount,
		Provider:        d.Provider,
		Reference:       d.Reference,
		Status:          string(d.Status),
		CreditedSeconds: d.CreditedSeconds,
		CreatedAt:       d.CreatedAt,
	}
	if d.SessionID != "" {
		id := d.SessionID
		m.SessionID = &id
	}
	return m
}
