package push

import (
	"context"
	"log"

	"github.com/Kingsley-codes/we-listen/internal/domain"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/mq"
)

// Notifier implements domain.PushNotifier. Pushes go through the queue when
// one is configured so the message-send path never waits on the web-push
// round trip; without a queue they are delivered directly.
type Notifier struct {
	producer *mq.Producer // nil when rocketmq is not configured
	sender   *Sender
}

func NewNotifier(producer *mq.Producer, sender *Sender) *Notifier {
	return &Notifier{producer: producer, sender: sender}
}

func (n *Notifier) NotifyTherapist(ctx context.Context, therapistID string, note *domain.PushNotification) {
	if n.producer != nil {
		if err := n.producer.SendTherapistPush(ctx, therapistID, note); err == nil {
			return
		} else {
			log.Printf("[WARN] enqueue therapist push failed, sending directly: %v", err)
		}
	}
	if err := n.sender.SendToTherapist(ctx, therapistID, note); err != nil {
		log.Printf("[WARN] push to therapist %s failed: %v", therapistID, err)
	}
}

func (n *Notifier) BroadcastUnassigned(ctx context.Context, note *domain.PushNotification) {
	if n.producer != nil {
		if err := n.producer.SendBroadcastPush(ctx, note); err == nil {
			return
		} else {
			log.Printf("[WARN] enqueue broadcast push failed, sending directly: %v", err)
		}
	}
	if err := n.sender.SendToAll(ctx, note); err != nil {
		log.Printf("[WARN] broadcast push failed: %v", err)
	}
}
