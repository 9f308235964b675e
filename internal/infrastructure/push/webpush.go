package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/Kingsley-codes/we-listen/config"
	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// Sender delivers web-push notifications to therapist browsers using the
// VAPID key pair from config.
type Sender struct {
	therapists domain.TherapistRepository
	options    webpush.Options
}

func NewSender(therapists domain.TherapistRepository, cfg *config.PushConfig) *Sender {
	return &Sender{
		therapists: therapists,
		options: webpush.Options{
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             60,
		},
	}
}

func (s *Sender) SendToTherapist(ctx context.Context, therapistID string, note *domain.PushNotification) error {
	therapist, err := s.therapists.FindByID(ctx, therapistID)
	if err != nil {
		return fmt.Errorf("find therapist %s: %w", therapistID, err)
	}
	s.deliver(therapist, note)
	return nil
}

func (s *Sender) SendToAll(ctx context.Context, note *domain.PushNotification) error {
	therapists, err := s.therapists.FindSubscribed(ctx)
	if err != nil {
		return fmt.Errorf("find subscribed therapists: %w", err)
	}
	for _, therapist := range therapists {
		s.deliver(therapist, note)
	}
	return nil
}

// deliver pushes to every subscription the therapist registered. A dead
// endpoint is logged and skipped so one stale browser cannot block the rest.
func (s *Sender) deliver(therapist *domain.Therapist, note *domain.PushNotification) {
	body, err := json.Marshal(note)
	if err != nil {
		log.Printf("[ERROR] marshal push payload: %v", err)
		return
	}

	for _, sub := range therapist.Subscriptions {
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}
		resp, err := webpush.SendNotification(body, target, &s.options)
		if err != nil {
			log.Printf("[WARN] push to %s failed: %v", therapist.TherapistID, err)
			continue
		}
		resp.Body.Close()
	}
}
