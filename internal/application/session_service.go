package application

import (
	"context"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"

	"github.com/google/uuid"
)

const therapistHomeURL = "https://we-listen.co/therapist/homePage?"

// SessionService is the authoritative session state machine. User actions,
// therapist actions and the reconciliation worker all go through it.
type SessionService struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	messages domain.MessageRepository
	events   domain.EventPublisher
	push     domain.PushNotifier
	clock    domain.Clock
}

func NewSessionService(
	sessions domain.SessionRepository,
	users domain.UserRepository,
	messages domain.MessageRepository,
	events domain.EventPublisher,
	push domain.PushNotifier,
	clock domain.Clock,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		messages: messages,
		events:   events,
		push:     push,
		clock:    clock,
	}
}

// Start returns the user's ongoing session unchanged, resumes a locked one
// after a top-up, or creates a fresh session funded by both buckets. A
// resumed session comes back paused, not active: activation always waits
// for a therapist reply.
func (s *SessionService) Start(ctx context.Context, userID string) (*domain.Session, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.sessions.FindOngoingByUser(ctx, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	initial := user.TotalCreditSeconds()

	locked, err := s.sessions.FindLockedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if locked != nil && initial > 0 {
		locked.RemainingSeconds += initial
		locked.Status = domain.StatusPaused
		locked.LastActiveTimestamp = nil
		if err := s.sessions.Update(ctx, locked); err != nil {
			return nil, err
		}
		return locked, nil
	}

	status := domain.StatusUnassigned
	if initial <= 0 {
		status = domain.StatusLocked
	}
	session := &domain.Session{
		SessionID:        uuid.New().String(),
		UserID:           userID,
		Status:           status,
		RemainingSeconds: initial,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetActive returns the user's ongoing session.
func (s *SessionService) GetActive(ctx context.Context, userID string) (*domain.Session, error) {
	session, err := s.sessions.FindOngoingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SendUserMessage persists a user message, stamps lastUserMessageAt and
// fans out notifications: the owning therapist if claimed, every
// subscribed therapist otherwise. Publish and push are best effort and
// never roll back the persisted message.
func (s *SessionService) SendUserMessage(ctx context.Context, sessionID, userID, text string) (*domain.Message, error) {
	if sessionID == "" || text == "" {
		return nil, domain.ErrMissingText
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrNotSessionOwner
	}
	if session.Blocked() {
		return nil, domain.ErrSessionLocked
	}

	now := s.clock.Now()
	msg := &domain.Message{
		MessageID: uuid.New().String(),
		SessionID: session.SessionID,
		Sender:    domain.SenderUser,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	session.LastUserMessageAt = &now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"sender":    domain.SenderUser,
		"text":      text,
		"createdAt": msg.CreatedAt,
	}
	s.events.Publish(ctx, session.SessionID, "message", payload)

	if session.Claimed() {
		s.events.PublishToTherapistList(ctx, session.TherapistID, "session_updated", map[string]any{
			"sessionId":   session.SessionID,
			"lastMessage": payload,
		})
		s.push.NotifyTherapist(ctx, session.TherapistID, &domain.PushNotification{
			Event:     "new_message",
			Title:     "New Message from User",
			Body:      text,
			SessionID: session.SessionID,
			URL:       therapistHomeURL,
		})
	} else {
		s.push.BroadcastUnassigned(ctx, &domain.PushNotification{
			Event:     "new_unassigned_chat",
			Title:     "New Unassigned Chat",
			Body:      text,
			SessionID: session.SessionID,
			URL:       therapistHomeURL,
		})
	}
	return msg, nil
}

// ReplyAsTherapist claims the session first: one conditional update that
// only matches when the session is unowned or already owned by the
// caller. Losing the claim is a conflict; winning it with no credit left
// is forbidden and persists nothing.
func (s *SessionService) ReplyAsTherapist(ctx context.Context, sessionID, therapistID, text string) (*domain.Message, *domain.Session, error) {
	if sessionID == "" || text == "" {
		return nil, nil, domain.ErrMissingText
	}
	prior, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	priorStatus := prior.Status

	now := s.clock.Now()
	session, err := s.sessions.Claim(ctx, sessionID, therapistID, now)
	if err != nil {
		return nil, nil, err
	}
	if session.RemainingSeconds <= 0 || priorStatus == domain.StatusLocked {
		return nil, nil, domain.ErrSessionLocked
	}

	msg := &domain.Message{
		MessageID: uuid.New().String(),
		SessionID: session.SessionID,
		Sender:    domain.SenderTherapist,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("save message: %w", err)
	}

	session.LastTherapistMessageAt = &now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, nil, err
	}

	if priorStatus == domain.StatusPaused {
		s.events.Publish(ctx, session.SessionID, "session:resumed", map[string]any{
			"resumedBy": domain.SenderTherapist,
		})
	}
	s.events.Publish(ctx, session.SessionID, "message", map[string]any{
		"sender":    domain.SenderTherapist,
		"text":      text,
		"createdAt": msg.CreatedAt,
	})
	return msg, session, nil
}

// Pause suspends an active session on user request. The timer stops
// because lastActiveTimestamp is cleared; the worker skips non-active
// sessions entirely.
func (s *SessionService) Pause(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrNotSessionOwner
	}
	if session.Status != domain.StatusActive {
		return nil, domain.ErrSessionNotActive
	}
	session.Status = domain.StatusPaused
	session.LastActiveTimestamp = nil
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, session.SessionID, "session:paused", map[string]any{
		"reason": "manual_pause",
	})
	return session, nil
}

// History returns the session's messages ordered by creation time.
func (s *SessionService) History(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	return s.messages.FindBySession(ctx, sessionID)
}

// TherapistSessions returns the therapist's claimed sessions plus the
// unassigned pool, for the sidebar.
func (s *SessionService) TherapistSessions(ctx context.Context, therapistID string) (assigned, unassigned []*domain.Session, err error) {
	if assigned, err = s.sessions.FindByTherapist(ctx, therapistID, 100); err != nil {
		return nil, nil, err
	}
	if unassigned, err = s.sessions.FindUnassigned(ctx, 100); err != nil {
		return nil, nil, err
	}
	return assigned, unassigned, nil
}
