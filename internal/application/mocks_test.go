package application_test

import (
	"context"
	"time"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type mockUserRepo struct {
	SaveFn              func(ctx context.Context, user *domain.User) error
	FindByIDFn          func(ctx context.Context, userID string) (*domain.User, error)
	FindByUsernameFn    func(ctx context.Context, username string) (*domain.User, error)
	ConsumeCreditsFn    func(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error)
	RefundCreditsFn     func(ctx context.Context, userID string, free, paid int64) error
	CreditPaidSecondsFn func(ctx context.Context, userID string, seconds int64) error
	ResetFreeCreditsFn  func(ctx context.Context, seconds int64) (int64, error)
}

func (m *mockUserRepo) Save(ctx context.Context, user *domain.User) error {
	return m.SaveFn(ctx, user)
}

func (m *mockUserRepo) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.FindByIDFn(ctx, userID)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.FindByUsernameFn(ctx, username)
}

func (m *mockUserRepo) ConsumeCredits(ctx context.Context, userID string, seconds int64) (*domain.CreditConsumption, error) {
	return m.ConsumeCreditsFn(ctx, userID, seconds)
}

func (m *mockUserRepo) RefundCredits(ctx context.Context, userID string, free, paid int64) error {
	return m.RefundCreditsFn(ctx, userID, free, paid)
}

func (m *mockUserRepo) CreditPaidSeconds(ctx context.Context, userID string, seconds int64) error {
	return m.CreditPaidSecondsFn(ctx, userID, seconds)
}

func (m *mockUserRepo) ResetFreeCredits(ctx context.Context, seconds int64) (int64, error) {
	return m.ResetFreeCreditsFn(ctx, seconds)
}

type mockSessionRepo struct {
	CreateFn            func(ctx context.Context, session *domain.Session) error
	UpdateFn            func(ctx context.Context, session *domain.Session) error
	FindByIDFn          func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindOngoingByUserFn func(ctx context.Context, userID string) (*domain.Session, error)
	FindLockedByUserFn  func(ctx context.Context, userID string) (*domain.Session, error)
	FindByStatusFn      func(ctx context.Context, status domain.SessionStatus) ([]*domain.Session, error)
	FindUnassignedFn    func(ctx context.Context, limit int) ([]*domain.Session, error)
	FindByTherapistFn   func(ctx context.Context, therapistID string, limit int) ([]*domain.Session, error)
	ClaimFn             func(ctx context.Context, sessionID, therapistID string, now time.Time) (*domain.Session, error)
	TopUpFn             func(ctx context.Context, sessionID string, seconds int64, now time.Time) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	return m.CreateFn(ctx, session)
}

func (m *mockSessionRepo) Update(ctx context.Context, session *domain.Session) error {
	return m.UpdateFn(ctx, session)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.FindByIDFn(ctx, sessionID)
}

func (m *mockSessionRepo) FindOngoingByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return m.FindOngoingByUserFn(ctx, userID)
}

func (m *mockSessionRepo) FindLockedByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return m.FindLockedByUserFn(ctx, userID)
}

func (m *mockSessionRepo) FindByStatus(ctx context.Context, status domain.SessionStatus) ([]*domain.Session, error) {
	return m.FindByStatusFn(ctx, status)
}

func (m *mockSessionRepo) FindUnassigned(ctx context.Context, limit int) ([]*domain.Session, error) {
	return m.FindUnassignedFn(ctx, limit)
}

func (m *mockSessionRepo) FindByTherapist(ctx context.Context, therapistID string, limit int) ([]*domain.Session, error) {
	return m.FindByTherapistFn(ctx, therapistID, limit)
}

func (m *mockSessionRepo) Claim(ctx context.Context, sessionID, therapistID string, now time.Time) (*domain.Session, error) {
	return m.ClaimFn(ctx, sessionID, therapistID, now)
}

func (m *mockSessionRepo) TopUp(ctx context.Context, sessionID string, seconds int64, now time.Time) error {
	return m.TopUpFn(ctx, sessionID, seconds, now)
}

type mockMessageRepo struct {
	saved           []*domain.Message
	SaveFn          func(ctx context.Context, msg *domain.Message) error
	FindBySessionFn func(ctx context.Context, sessionID string) ([]*domain.Message, error)
}

func (m *mockMessageRepo) Save(ctx context.Context, msg *domain.Message) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, msg)
	}
	m.saved = append(m.saved, msg)
	return nil
}

func (m *mockMessageRepo) FindBySession(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	return m.FindBySessionFn(ctx, sessionID)
}

type mockTherapistRepo struct {
	SaveFn            func(ctx context.Context, t *domain.Therapist) error
	FindByIDFn        func(ctx context.Context, therapistID string) (*domain.Therapist, error)
	FindByNameFn      func(ctx context.Context, name string) (*domain.Therapist, error)
	FindSubscribedFn  func(ctx context.Context) ([]*domain.Therapist, error)
	AddSubscriptionFn func(ctx context.Context, therapistID string, sub domain.PushSubscription) error
}

func (m *mockTherapistRepo) Save(ctx context.Context, t *domain.Therapist) error {
	return m.SaveFn(ctx, t)
}

func (m *mockTherapistRepo) FindByID(ctx context.Context, therapistID string) (*domain.Therapist, error) {
	return m.FindByIDFn(ctx, therapistID)
}

func (m *mockTherapistRepo) FindByName(ctx context.Context, name string) (*domain.Therapist, error) {
	return m.FindByNameFn(ctx, name)
}

func (m *mockTherapistRepo) FindSubscribed(ctx context.Context) ([]*domain.Therapist, error) {
	return m.FindSubscribedFn(ctx)
}

func (m *mockTherapistRepo) AddSubscription(ctx context.Context, therapistID string, sub domain.PushSubscription) error {
	return m.AddSubscriptionFn(ctx, therapistID, sub)
}

type mockReferralRepo struct {
	code  *domain.ReferralCode
	saved []*domain.ReferralCode
}

func (m *mockReferralRepo) Current(ctx context.Context) (*domain.ReferralCode, error) {
	return m.code, nil
}

func (m *mockReferralRepo) Save(ctx context.Context, code *domain.ReferralCode) error {
	m.code = code
	m.saved = append(m.saved, code)
	return nil
}

type publishedEvent struct {
	Channel string
	Event   string
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, sessionID, event string, payload any) {
	m.events = append(m.events, publishedEvent{Channel: "session:" + sessionID, Event: event})
}

func (m *mockPublisher) PublishToTherapistList(ctx context.Context, therapistID, event string, payload any) {
	m.events = append(m.events, publishedEvent{Channel: "therapist:" + therapistID, Event: event})
}

func (m *mockPublisher) has(event string) bool {
	for _, e := range m.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

type mockNotifier struct {
	therapistNotes []domain.PushNotification
	broadcasts     []domain.PushNotification
}

func (m *mockNotifier) NotifyTherapist(ctx context.Context, therapistID string, note *domain.PushNotification) {
	m.therapistNotes = append(m.therapistNotes, *note)
}

func (m *mockNotifier) BroadcastUnassigned(ctx context.Context, note *domain.PushNotification) {
	m.broadcasts = append(m.broadcasts, *note)
}
