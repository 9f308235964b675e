package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

func TestConsumeRejectsNegativeSeconds(t *testing.T) {
	called := false
	users := &mockUserRepo{
		ConsumeCreditsFn: func(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
			called = true
			return nil, nil
		},
	}
	ledger := application.NewCreditLedger(users)

	_, err := ledger.Consume(context.Background(), "u1", -5)
	if !errors.Is(err, domain.ErrNegativeSeconds) {
		t.Fatalf("expected ErrNegativeSeconds, got %v", err)
	}
	if called {
		t.Fatal("negative consume must not reach the repository")
	}
}

func TestConsumeZeroIsNoop(t *testing.T) {
	users := &mockUserRepo{
		ConsumeCreditsFn: func(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
			t.Fatal("zero consume must not reach the repository")
			return nil, nil
		},
	}
	ledger := application.NewCreditLedger(users)

	split, err := ledger.Consume(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.FreeConsumed != 0 || split.PaidConsumed != 0 || split.Remainder != 0 {
		t.Fatalf("expected empty split, got %+v", split)
	}
}

func TestConsumeReturnsRepositorySplit(t *testing.T) {
	users := &mockUserRepo{
		ConsumeCreditsFn: func(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
			if userID != "u1" || seconds != 100 {
				t.Fatalf("unexpected args: %s %d", userID, seconds)
			}
			return &domain.CreditConsumption{FreeConsumed: 60, PaidConsumed: 40}, nil
		},
	}
	ledger := application.NewCreditLedger(users)

	split, err := ledger.Consume(context.Background(), "u1", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.FreeConsumed != 60 || split.PaidConsumed != 40 {
		t.Fatalf("unexpected split: %+v", split)
	}
}

func TestRefundSkipsEmptySplit(t *testing.T) {
	users := &mockUserRepo{
		RefundCreditsFn: func(ctx context.Context, userID string, free, paid int64) error {
			t.Fatal("empty refund must not reach the repository")
			return nil
		},
	}
	ledger := application.NewCreditLedger(users)

	if err := ledger.Refund(context.Background(), "u1", nil); err != nil {
		t.Fatalf("nil split: %v", err)
	}
	if err := ledger.Refund(context.Background(), "u1", &domain.CreditConsumption{}); err != nil {
		t.Fatalf("zero split: %v", err)
	}
}

func TestRefundPassesSplitThrough(t *testing.T) {
	var gotFree, gotPaid int64
	users := &mockUserRepo{
		RefundCreditsFn: func(ctx context.Context, userID string, free, paid int64) error {
			gotFree, gotPaid = free, paid
			return nil
		},
	}
	ledger := application.NewCreditLedger(users)

	err := ledger.Refund(context.Background(), "u1", &domain.CreditConsumption{FreeConsumed: 10, PaidConsumed: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFree != 10 || gotPaid != 3 {
		t.Fatalf("expected refund 10/3, got %d/%d", gotFree, gotPaid)
	}
}

func TestCreditValidation(t *testing.T) {
	credited := int64(0)
	users := &mockUserRepo{
		CreditPaidSecondsFn: func(ctx context.Context, userID string, seconds int64) error {
			credited += seconds
			return nil
		},
	}
	ledger := application.NewCreditLedger(users)

	if err := ledger.Credit(context.Background(), "u1", -1); !errors.Is(err, domain.ErrNegativeSeconds) {
		t.Fatalf("expected ErrNegativeSeconds, got %v", err)
	}
	if err := ledger.Credit(context.Background(), "u1", 0); err != nil {
		t.Fatalf("zero credit: %v", err)
	}
	if err := ledger.Credit(context.Background(), "u1", 7200); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if credited != 7200 {
		t.Fatalf("expected 7200 credited, got %d", credited)
	}
}
