package application

import (
	"context"
	"fmt"
	"log"

	"github.com/Kingsley-codes/we-listen/internal/domain"

	"github.com/google/uuid"
)

// packageSeconds maps purchase amounts (naira) to credited seconds.
var packageSeconds = map[int64]int64{
	2000:  7200,
	4000:  14400,
	6000:  21600,
	10000: 36000,
}

// GatewayTransaction is the subset of the provider's verify response the
// service cares about.
type GatewayTransaction struct {
	Reference string
	Status    string
	UserID    string
	SessionID string
}

// PaymentGateway is the provider integration (Paystack in production).
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amountKobo int64, reference string, metadata map[string]string) (authorizationURL string, err error)
	Verify(ctx context.Context, reference string) (*GatewayTransaction, error)
}

// CreditQueue hands a verified payment off for asynchronous credit apply.
type CreditQueue interface {
	EnqueueCredit(ctx context.Context, reference string) error
}

// PaymentService records payments and turns provider confirmations into
// ledger credits and session top-ups.
type PaymentService struct {
	payments domain.PaymentRepository
	sessions domain.SessionRepository
	ledger   *CreditLedger
	gateway  PaymentGateway
	queue    CreditQueue // nil-safe: falls back to synchronous apply
	clock    domain.Clock
}

func NewPaymentService(
	payments domain.PaymentRepository,
	sessions domain.SessionRepository,
	ledger *CreditLedger,
	gateway PaymentGateway,
	queue CreditQueue,
	clock domain.Clock,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		sessions: sessions,
		ledger:   ledger,
		gateway:  gateway,
		queue:    queue,
		clock:    clock,
	}
}

// Initialize records a pending payment and opens a provider checkout.
func (s *PaymentService) Initialize(ctx context.Context, user *domain.User, amount int64, sessionID string) (authorizationURL, reference string, err error) {
	credited, ok := packageSeconds[amount]
	if !ok {
		return "", "", domain.ErrInvalidPackage
	}

	reference = fmt.Sprintf("ref_%d_%s", s.clock.Now().UnixMilli(), uuid.New().String()[:8])
	payment := &domain.Payment{
		PaymentID:       uuid.New().String(),
		UserID:          user.UserID,
		Amount:          amount,
		Provider:        "paystack",
		Reference:       reference,
		Status:          domain.PaymentPending,
		CreditedSeconds: credited,
		SessionID:       sessionID,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return "", "", fmt.Errorf("save payment: %w", err)
	}

	email := fmt.Sprintf("%s@we-listen.co", user.Username)
	metadata := map[string]string{"userId": user.UserID, "sessionId": sessionID}
	authorizationURL, err = s.gateway.Initialize(ctx, email, amount*100, reference, metadata)
	if err != nil {
		return "", "", fmt.Errorf("gateway initialize: %w", err)
	}
	return authorizationURL, reference, nil
}

// Verify re-checks a reference with the provider and applies the credit if
// it succeeded. Safe to call repeatedly.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*domain.Payment, error) {
	payment, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentSuccess {
		return payment, nil
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("gateway verify: %w", err)
	}
	if tx.Status != "success" {
		return payment, domain.ErrPaymentNotSuccessful
	}
	if err := s.ApplyCredit(ctx, reference); err != nil {
		return nil, err
	}
	return s.payments.FindByReference(ctx, reference)
}

// ConfirmAsync acknowledges a provider webhook. The credit is applied on
// the queue when one is configured so the webhook responds fast; without a
// queue it applies inline.
func (s *PaymentService) ConfirmAsync(ctx context.Context, reference string) error {
	if s.queue != nil {
		if err := s.queue.EnqueueCredit(ctx, reference); err == nil {
			return nil
		} else {
			log.Printf("[WARN] enqueue payment credit %s failed, applying inline: %v", reference, err)
		}
	}
	return s.ApplyCredit(ctx, reference)
}

// ApplyCredit credits the user's paid bucket and, when the payment names a
// session, tops that session up (a drained locked session comes back
// active). The pending->success transition is the idempotency guard; a
// failed apply reopens the payment so the next delivery retries it instead
// of silently dropping the purchased seconds.
func (s *PaymentService) ApplyCredit(ctx context.Context, reference string) error {
	payment, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return err
	}

	won, err := s.payments.MarkSuccess(ctx, reference)
	if err != nil {
		return fmt.Errorf("mark payment success: %w", err)
	}
	if !won {
		return nil // already applied
	}

	if payment.CreditedSeconds <= 0 {
		return nil
	}
	if err := s.ledger.Credit(ctx, payment.UserID, payment.CreditedSeconds); err != nil {
		s.reopen(ctx, reference)
		return err
	}
	if payment.SessionID != "" {
		if err := s.sessions.TopUp(ctx, payment.SessionID, payment.CreditedSeconds, s.clock.Now()); err != nil {
			if revErr := s.ledger.Revoke(ctx, payment.UserID, payment.CreditedSeconds); revErr != nil {
				log.Printf("[ERROR] revoke credit for payment %s: %v", reference, revErr)
			}
			s.reopen(ctx, reference)
			return fmt.Errorf("top up session %s: %w", payment.SessionID, err)
		}
	}
	return nil
}

func (s *PaymentService) reopen(ctx context.Context, reference string) {
	if err := s.payments.Reopen(ctx, reference); err != nil {
		log.Printf("[ERROR] reopen payment %s after failed credit apply: %v", reference, err)
	}
}
