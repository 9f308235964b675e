package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kingsley-codes/we-listen/internal/domain"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
)

type Producer struct{ client rocketmq.Producer }

func NewProducer(client rocketmq.Producer) *Producer {
	return &Producer{client: client}
}

type pushEnvelope struct {
	TherapistID string                  `json:"therapistId,omitempty"`
	Note        domain.PushNotification `json:"note"`
}

type creditEnvelope struct {
	Reference string `json:"reference"`
}

// SendTherapistPush queues a push aimed at one therapist.
func (p *Producer) SendTherapistPush(ctx context.Context, therapistID string, note *domain.PushNotification) error {
	data, err := json.Marshal(pushEnvelope{TherapistID: therapistID, Note: *note})
	if err != nil {
		return fmt.Errorf("converting error: %w", err)
	}
	msg := primitive.NewMessage(TopicNotify, data)
	msg.WithTag(TagPushTherapist)

	_, err = p.client.SendSync(ctx, msg)
	return err
}

// SendBroadcastPush queues a push for every subscribed therapist.
func (p *Producer) SendBroadcastPush(ctx context.Context, note *domain.PushNotification) error {
	data, err := json.Marshal(pushEnvelope{Note: *note})
	if err != nil {
		return fmt.Errorf("converting error: %w", err)
	}
	msg := primitive.NewMessage(TopicNotify, data)
	msg.WithTag(TagPushBroadcast)

	_, err = p.client.SendSync(ctx, msg)
	return err
}

// EnqueueCredit hands a confirmed payment reference off for asynchronous
// credit application.
func (p *Producer) EnqueueCredit(ctx context.Context, reference string) error {
	data, err := json.Marshal(creditEnvelope{Reference: reference})
	if err != nil {
		return fmt.Errorf("converting error: %w", err)
	}
	msg := primitive.NewMessage(TopicPayment, data)
	msg.WithTag(TagPaymentSuccess)

	_, err = p.client.SendSync(ctx, msg)
	return err
}
