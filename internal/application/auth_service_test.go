package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

func newAuthService(users *mockUserRepo, therapists *mockTherapistRepo, referrals *mockReferralRepo) *application.AuthService {
	return application.NewAuthService(users, therapists, referrals, "test-secret", time.Hour, 9000, &fakeClock{now: time.Now()})
}

func TestSignupUserValidatesUsername(t *testing.T) {
	svc := newAuthService(&mockUserRepo{}, &mockTherapistRepo{}, &mockReferralRepo{})

	for _, name := range []string{"", "a", "has space", "emoji😀", "x"} {
		_, _, err := svc.SignupUser(context.Background(), name, "secret", "")
		if !errors.Is(err, domain.ErrInvalidUsername) {
			t.Fatalf("username %q: expected ErrInvalidUsername, got %v", name, err)
		}
	}
}

func TestSignupUserGrantsFreeCredits(t *testing.T) {
	var saved *domain.User
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		SaveFn: func(ctx context.Context, user *domain.User) error {
			saved = user
			return nil
		},
	}
	svc := newAuthService(users, &mockTherapistRepo{}, &mockReferralRepo{})

	token, user, err := svc.SignupUser(context.Background(), "amara", "secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if saved != user {
		t.Fatal("returned user must be the persisted one")
	}
	if user.FreeCreditSeconds != 9000 || user.PaidCreditSeconds != 0 {
		t.Fatalf("expected the free grant only, got free=%d paid=%d", user.FreeCreditSeconds, user.PaidCreditSeconds)
	}
	if user.UnlimitedPlan {
		t.Fatal("plain signup must not be unlimited")
	}
}

func TestSignupUserWithReferralStartsPaid(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		SaveFn: func(ctx context.Context, user *domain.User) error { return nil },
	}
	referrals := &mockReferralRepo{code: &domain.ReferralCode{CurrentCode: "FRIEND42", UsageCount: 0}}
	svc := newAuthService(users, &mockTherapistRepo{}, referrals)

	_, user, err := svc.SignupUser(context.Background(), "amara", "secret", "FRIEND42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FreeCreditSeconds != 0 {
		t.Fatalf("referral signup skips the free grant, got %d", user.FreeCreditSeconds)
	}
	if user.PaidCreditSeconds == 0 || !user.UnlimitedPlan {
		t.Fatalf("referral signup must start with a paid allowance, got %+v", user)
	}
	if referrals.code.UsageCount != 1 {
		t.Fatalf("expected one recorded use, got %d", referrals.code.UsageCount)
	}
}

func TestFailedSignupDoesNotBurnReferralUse(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		SaveFn: func(ctx context.Context, user *domain.User) error {
			return errors.New("connection refused")
		},
	}
	referrals := &mockReferralRepo{code: &domain.ReferralCode{CurrentCode: "FRIEND42", UsageCount: 2}}
	svc := newAuthService(users, &mockTherapistRepo{}, referrals)

	if _, _, err := svc.SignupUser(context.Background(), "amara", "secret", "FRIEND42"); err == nil {
		t.Fatal("expected the save failure to surface")
	}
	if referrals.code.UsageCount != 2 {
		t.Fatalf("failed signup must not consume a referral use, got %d", referrals.code.UsageCount)
	}
	if len(referrals.saved) != 0 {
		t.Fatal("referral code must not be written on a failed signup")
	}
}

func TestReferralCodeRotatesAtUsageCap(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		SaveFn: func(ctx context.Context, user *domain.User) error { return nil },
	}
	referrals := &mockReferralRepo{code: &domain.ReferralCode{CurrentCode: "FRIEND42", UsageCount: 4}}
	svc := newAuthService(users, &mockTherapistRepo{}, referrals)

	if _, _, err := svc.SignupUser(context.Background(), "amara", "secret", "FRIEND42"); err != nil {
		t.Fatalf("fifth use must succeed: %v", err)
	}
	if referrals.code.CurrentCode == "FRIEND42" {
		t.Fatal("code must rotate after the fifth use")
	}
	if referrals.code.UsageCount != 0 {
		t.Fatalf("rotated code must start unused, got %d", referrals.code.UsageCount)
	}

	if _, _, err := svc.SignupUser(context.Background(), "bayo", "secret", "FRIEND42"); !errors.Is(err, domain.ErrInvalidReferral) {
		t.Fatalf("stale code must be rejected, got %v", err)
	}
}

func TestLoginUserBadCredentials(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			if username == "amara" {
				return &domain.User{UserID: "u1", Username: "amara", PasswordHash: string(hash)}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	svc := newAuthService(users, &mockTherapistRepo{}, &mockReferralRepo{})

	if _, _, err := svc.LoginUser(context.Background(), "nobody", "right"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("unknown user: expected ErrBadCredentials, got %v", err)
	}
	if _, _, err := svc.LoginUser(context.Background(), "amara", "wrong"); !errors.Is(err, domain.ErrBadCredentials) {
		t.Fatalf("wrong password: expected ErrBadCredentials, got %v", err)
	}
	if _, _, err := svc.LoginUser(context.Background(), "amara", "right"); err != nil {
		t.Fatalf("good login: %v", err)
	}
}

func TestSignupUserRejectsDuplicate(t *testing.T) {
	users := &mockUserRepo{
		FindByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{UserID: "u1", Username: username}, nil
		},
	}
	svc := newAuthService(users, &mockTherapistRepo{}, &mockReferralRepo{})

	_, _, err := svc.SignupUser(context.Background(), "amara", "secret", "")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}
