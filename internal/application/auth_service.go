package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{2,50}$`)

const (
	referralUsageLimit = 5
	// A referral signup starts on the unlimited plan: one year of paid
	// seconds instead of the weekly free grant.
	referralPaidSeconds = 31622400
)

// AuthService issues credentials for users and therapists. Referral codes
// are a single rotating code with a usage cap.
type AuthService struct {
	users      domain.UserRepository
	therapists domain.TherapistRepository
	referrals  domain.ReferralRepository
	jwtSecret  string
	expire     time.Duration
	freeGrant  int64
	clock      domain.Clock
}

func NewAuthService(
	users domain.UserRepository,
	therapists domain.TherapistRepository,
	referrals domain.ReferralRepository,
	jwtSecret string,
	expire time.Duration,
	freeGrant int64,
	clock domain.Clock,
) *AuthService {
	return &AuthService{
		users:      users,
		therapists: therapists,
		referrals:  referrals,
		jwtSecret:  jwtSecret,
		expire:     expire,
		freeGrant:  freeGrant,
		clock:      clock,
	}
}

func (s *AuthService) SignupUser(ctx context.Context, username, password, referralCode string) (string, *domain.User, error) {
	if !usernamePattern.MatchString(username) {
		return "", nil, domain.ErrInvalidUsername
	}
	if password == "" {
		return "", nil, domain.ErrInvalidPassword
	}
	if existing, err := s.users.FindByUsername(ctx, username); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	} else if existing != nil {
		return "", nil, domain.ErrUserAlreadyExists
	}

	var referral *domain.ReferralCode
	if referralCode != "" {
		current, err := s.checkReferral(ctx, referralCode)
		if err != nil {
			return "", nil, err
		}
		referral = current
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserID:       uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		ReferralCode: referralCode,
		CreatedAt:    s.clock.Now(),
	}
	if referral != nil {
		user.PaidCreditSeconds = referralPaidSeconds
		user.UnlimitedPlan = true
	} else {
		user.FreeCreditSeconds = s.freeGrant
	}
	if err := s.users.Save(ctx, user); err != nil {
		return "", nil, err
	}
	if referral != nil {
		if err := s.countReferralUse(ctx, referral); err != nil {
			log.Printf("[WARN] record referral use for user %s: %v", user.UserID, err)
		}
	}

	token, err := s.sign("user_id", user.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrBadCredentials
	}
	token, err := s.sign("user_id", user.UserID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) SignupTherapist(ctx context.Context, name, password string) (*domain.Therapist, error) {
	if !usernamePattern.MatchString(name) {
		return nil, domain.ErrInvalidUsername
	}
	if password == "" {
		return nil, domain.ErrInvalidPassword
	}
	if existing, err := s.therapists.FindByName(ctx, name); err != nil && !errors.Is(err, domain.ErrTherapistNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	t := &domain.Therapist{
		TherapistID:  uuid.New().String(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.therapists.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *AuthService) LoginTherapist(ctx context.Context, name, password string) (string, *domain.Therapist, error) {
	t, err := s.therapists.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrTherapistNotFound) {
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrBadCredentials
	}
	token, err := s.sign("therapist_id", t.TherapistID)
	if err != nil {
		return "", nil, err
	}
	return token, t, nil
}

// checkReferral validates the submitted code against the current rotating
// code without consuming a use.
func (s *AuthService) checkReferral(ctx context.Context, code string) (*domain.ReferralCode, error) {
	current, err := s.referrals.Current(ctx)
	if err != nil {
		return nil, err
	}
	if code != current.CurrentCode {
		return nil, domain.ErrInvalidReferral
	}
	if current.UsageCount >= referralUsageLimit {
		return nil, domain.ErrReferralUsedUp
	}
	return current, nil
}

// countReferralUse burns one use and rotates the code once the cap is
// reached. Runs only after the referred user's row is saved, so a failed
// signup never consumes a use.
func (s *AuthService) countReferralUse(ctx context.Context, current *domain.ReferralCode) error {
	current.UsageCount++
	if current.UsageCount >= referralUsageLimit {
		current.CurrentCode = domain.GenerateReferralCode()
		current.UsageCount = 0
	}
	return s.referrals.Save(ctx, current)
}

func (s *AuthService) sign(claim, id string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claim: id,
		"exp": s.clock.Now().Add(s.expire).Unix(),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return signed, nil
}
