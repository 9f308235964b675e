package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type mockPaymentRepo struct {
	SaveFn            func(ctx context.Context, p *domain.Payment) error
	FindByReferenceFn func(ctx context.Context, reference string) (*domain.Payment, error)
	MarkSuccessFn     func(ctx context.Context, reference string) (bool, error)
	ReopenFn          func(ctx context.Context, reference string) error
}

func (m *mockPaymentRepo) Save(ctx context.Context, p *domain.Payment) error {
	return m.SaveFn(ctx, p)
}

func (m *mockPaymentRepo) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return m.FindByReferenceFn(ctx, reference)
}

func (m *mockPaymentRepo) MarkSuccess(ctx context.Context, reference string) (bool, error) {
	return m.MarkSuccessFn(ctx, reference)
}

func (m *mockPaymentRepo) Reopen(ctx context.Context, reference string) error {
	return m.ReopenFn(ctx, reference)
}

// pendingPaymentRepo tracks the pending/success transition in memory so
// tests can exercise retries after a failed apply.
func pendingPaymentRepo(payment *domain.Payment) *mockPaymentRepo {
	return &mockPaymentRepo{
		FindByReferenceFn: func(ctx context.Context, reference string) (*domain.Payment, error) {
			copied := *payment
			return &copied, nil
		},
		MarkSuccessFn: func(ctx context.Context, reference string) (bool, error) {
			if payment.Status != domain.PaymentPending {
				return false, nil
			}
			payment.Status = domain.PaymentSuccess
			return true, nil
		},
		ReopenFn: func(ctx context.Context, reference string) error {
			payment.Status = domain.PaymentPending
			return nil
		},
	}
}

type mockGateway struct {
	InitializeFn func(ctx context.Context, email string, amountKobo int64, reference string, metadata map[string]string) (string, error)
	VerifyFn     func(ctx context.Context, reference string) (*application.GatewayTransaction, error)
}

func (m *mockGateway) Initialize(ctx context.Context, email string, amountKobo int64, reference string, metadata map[string]string) (string, error) {
	return m.InitializeFn(ctx, email, amountKobo, reference, metadata)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*application.GatewayTransaction, error) {
	return m.VerifyFn(ctx, reference)
}

func TestInitializeRejectsUnknownPackage(t *testing.T) {
	payments := &mockPaymentRepo{
		SaveFn: func(ctx context.Context, p *domain.Payment) error {
			t.Fatal("bad amount must not persist a payment")
			return nil
		},
	}
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(&mockUserRepo{}), &mockGateway{}, nil, &fakeClock{now: time.Now()})

	_, _, err := svc.Initialize(context.Background(), &domain.User{UserID: "u1", Username: "amara"}, 2500, "")
	if !errors.Is(err, domain.ErrInvalidPackage) {
		t.Fatalf("expected ErrInvalidPackage, got %v", err)
	}
}

func TestInitializeConvertsNairaToKobo(t *testing.T) {
	var saved *domain.Payment
	var gotAmount int64
	payments := &mockPaymentRepo{
		SaveFn: func(ctx context.Context, p *domain.Payment) error {
			saved = p
			return nil
		},
	}
	gateway := &mockGateway{
		InitializeFn: func(ctx context.Context, email string, amountKobo int64, reference string, metadata map[string]string) (string, error) {
			gotAmount = amountKobo
			return "https://checkout.example/abc", nil
		},
	}
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(&mockUserRepo{}), gateway, nil, &fakeClock{now: time.Now()})

	url, reference, err := svc.Initialize(context.Background(), &domain.User{UserID: "u1", Username: "amara"}, 4000, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://checkout.example/abc" || reference == "" {
		t.Fatalf("unexpected result: %s %s", url, reference)
	}
	if gotAmount != 400000 {
		t.Fatalf("expected 400000 kobo, got %d", gotAmount)
	}
	if saved.CreditedSeconds != 14400 {
		t.Fatalf("expected 14400 credited seconds, got %d", saved.CreditedSeconds)
	}
	if saved.Status != domain.PaymentPending {
		t.Fatalf("expected pending payment, got %s", saved.Status)
	}
}

func TestApplyCreditIsIdempotent(t *testing.T) {
	credited := int64(0)
	users := &mockUserRepo{
		CreditPaidSecondsFn: func(ctx context.Context, userID string, seconds int64) error {
			credited += seconds
			return nil
		},
	}
	won := true
	payments := &mockPaymentRepo{
		FindByReferenceFn: func(ctx context.Context, reference string) (*domain.Payment, error) {
			return &domain.Payment{Reference: reference, UserID: "u1", CreditedSeconds: 7200}, nil
		},
		MarkSuccessFn: func(ctx context.Context, reference string) (bool, error) {
			first := won
			won = false
			return first, nil
		},
	}
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(users), &mockGateway{}, nil, &fakeClock{now: time.Now()})

	if err := svc.ApplyCredit(context.Background(), "ref_1"); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := svc.ApplyCredit(context.Background(), "ref_1"); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if credited != 7200 {
		t.Fatalf("expected one credit of 7200, got %d", credited)
	}
}

func TestApplyCreditTopsUpAttachedSession(t *testing.T) {
	users := &mockUserRepo{
		CreditPaidSecondsFn: func(ctx context.Context, userID string, seconds int64) error { return nil },
	}
	payments := &mockPaymentRepo{
		FindByReferenceFn: func(ctx context.Context, reference string) (*domain.Payment, error) {
			return &domain.Payment{Reference: reference, UserID: "u1", SessionID: "s1", CreditedSeconds: 7200}, nil
		},
		MarkSuccessFn: func(ctx context.Context, reference string) (bool, error) { return true, nil },
	}
	var topped int64
	sessions := &mockSessionRepo{
		TopUpFn: func(ctx context.Context, sessionID string, seconds int64, now time.Time) error {
			if sessionID != "s1" {
				t.Fatalf("unexpected session: %s", sessionID)
			}
			topped = seconds
			return nil
		},
	}
	svc := application.NewPaymentService(payments, sessions, application.NewCreditLedger(users), &mockGateway{}, nil, &fakeClock{now: time.Now()})

	if err := svc.ApplyCredit(context.Background(), "ref_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topped != 7200 {
		t.Fatalf("expected session topped up by 7200, got %d", topped)
	}
}

func TestApplyCreditRetriesAfterTransientFailure(t *testing.T) {
	credited := int64(0)
	failOnce := true
	users := &mockUserRepo{
		CreditPaidSecondsFn: func(ctx context.Context, userID string, seconds int64) error {
			if failOnce {
				failOnce = false
				return errors.New("connection reset")
			}
			credited += seconds
			return nil
		},
	}
	payments := pendingPaymentRepo(&domain.Payment{Reference: "ref_1", UserID: "u1", CreditedSeconds: 7200, Status: domain.PaymentPending})
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(users), &mockGateway{}, nil, &fakeClock{now: time.Now()})

	if err := svc.ApplyCredit(context.Background(), "ref_1"); err == nil {
		t.Fatal("expected the ledger failure to surface")
	}
	if err := svc.ApplyCredit(context.Background(), "ref_1"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if credited != 7200 {
		t.Fatalf("expected the retry to deliver 7200 seconds, got %d", credited)
	}
}

func TestApplyCreditRevokesLedgerWhenTopUpFails(t *testing.T) {
	credited := int64(0)
	users := &mockUserRepo{
		CreditPaidSecondsFn: func(ctx context.Context, userID string, seconds int64) error {
			credited += seconds
			return nil
		},
	}
	payment := &domain.Payment{Reference: "ref_1", UserID: "u1", SessionID: "s1", CreditedSeconds: 7200, Status: domain.PaymentPending}
	payments := pendingPaymentRepo(payment)
	sessions := &mockSessionRepo{
		TopUpFn: func(ctx context.Context, sessionID string, seconds int64, now time.Time) error {
			return errors.New("deadlock detected")
		},
	}
	svc := application.NewPaymentService(payments, sessions, application.NewCreditLedger(users), &mockGateway{}, nil, &fakeClock{now: time.Now()})

	if err := svc.ApplyCredit(context.Background(), "ref_1"); err == nil {
		t.Fatal("expected the top-up failure to surface")
	}
	if credited != 0 {
		t.Fatalf("expected the ledger credit to be revoked, got net %d", credited)
	}
	if payment.Status != domain.PaymentPending {
		t.Fatalf("expected the payment back in pending, got %s", payment.Status)
	}
}

func TestVerifyReportsUnsuccessfulCharge(t *testing.T) {
	payments := &mockPaymentRepo{
		FindByReferenceFn: func(ctx context.Context, reference string) (*domain.Payment, error) {
			return &domain.Payment{Reference: reference, Status: domain.PaymentPending}, nil
		},
		MarkSuccessFn: func(ctx context.Context, reference string) (bool, error) {
			t.Fatal("a declined charge must not be marked success")
			return false, nil
		},
	}
	gateway := &mockGateway{
		VerifyFn: func(ctx context.Context, reference string) (*application.GatewayTransaction, error) {
			return &application.GatewayTransaction{Reference: reference, Status: "failed"}, nil
		},
	}
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(&mockUserRepo{}), gateway, nil, &fakeClock{now: time.Now()})

	payment, err := svc.Verify(context.Background(), "ref_1")
	if !errors.Is(err, domain.ErrPaymentNotSuccessful) {
		t.Fatalf("expected ErrPaymentNotSuccessful, got %v", err)
	}
	if payment == nil || payment.Status != domain.PaymentPending {
		t.Fatalf("expected the pending payment back, got %+v", payment)
	}
}

func TestVerifyShortCircuitsOnRecordedSuccess(t *testing.T) {
	payments := &mockPaymentRepo{
		FindByReferenceFn: func(ctx context.Context, reference string) (*domain.Payment, error) {
			return &domain.Payment{Reference: reference, Status: domain.PaymentSuccess}, nil
		},
	}
	gateway := &mockGateway{
		VerifyFn: func(ctx context.Context, reference string) (*application.GatewayTransaction, error) {
			t.Fatal("recorded success must not hit the provider again")
			return nil, nil
		},
	}
	svc := application.NewPaymentService(payments, &mockSessionRepo{}, application.NewCreditLedger(&mockUserRepo{}), gateway, nil, &fakeClock{now: time.Now()})

	payment, err := svc.Verify(context.Background(), "ref_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentSuccess {
		t.Fatalf("expected success, got %s", payment.Status)
	}
}
