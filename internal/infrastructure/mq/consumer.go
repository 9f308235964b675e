package mq

import (
	"context"
	"encoding/json"
	"log"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"

	"github.com/Kingsley-codes/we-listen/internal/domain"
)

// PushSender delivers queued notifications to device endpoints.
type PushSender interface {
	SendToTherapist(ctx context.Context, therapistID string, note *domain.PushNotification) error
	SendToAll(ctx context.Context, note *domain.PushNotification) error
}

// PaymentApplier credits a verified payment.
type PaymentApplier interface {
	ApplyCredit(ctx context.Context, reference string) error
}

type Consumer struct {
	client   rocketmq.PushConsumer
	sender   PushSender
	payments PaymentApplier
}

func NewConsumer(client rocketmq.PushConsumer, sender PushSender, payments PaymentApplier) *Consumer {
	return &Consumer{
		client:   client,
		sender:   sender,
		payments: payments,
	}
}

func (c *Consumer) SubscribeNotify() error {
	return c.client.Subscribe(TopicNotify, consumer.MessageSelector{}, c.handleNotifyMessage)
}

func (c *Consumer) SubscribePayment() error {
	return c.client.Subscribe(TopicPayment, consumer.MessageSelector{}, c.handlePaymentMessage)
}

func (c *Consumer) handleNotifyMessage(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	for _, msg := range msgs {
		var env pushEnvelope
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			log.Printf("[ERROR] unmarshal push event error: %v", err)
			continue
		}

		var err error
		switch msg.GetTags() {
		case TagPushTherapist:
			err = c.sender.SendToTherapist(ctx, env.TherapistID, &env.Note)
		case TagPushBroadcast:
			err = c.sender.SendToAll(ctx, &env.Note)
		default:
			log.Printf("[WARN] unknown tag: %s", msg.GetTags())
			continue
		}

		if err != nil {
			log.Printf("[ERROR] deliver push failed, will retry: %v", err)
			return consumer.ConsumeRetryLater, nil
		}
	}
	return consumer.ConsumeSuccess, nil
}

func (c *Consumer) handlePaymentMessage(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	for _, msg := range msgs {
		if msg.GetTags() != TagPaymentSuccess {
			log.Printf("[WARN] unknown tag: %s", msg.GetTags())
			continue
		}

		var env creditEnvelope
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			log.Printf("[ERROR] unmarshal credit event error: %v", err)
			continue
		}

		if err := c.payments.ApplyCredit(ctx, env.Reference); err != nil {
			log.Printf("[ERROR] apply credit %s failed, will retry: %v", env.Reference, err)
			return consumer.ConsumeRetryLater, nil
		}
		log.Printf("[INFO] payment credited: %s", env.Reference)
	}
	return consumer.ConsumeSuccess, nil
}

func (c *Consumer) Start() error {
	return c.client.Start()
}

func (c *Consumer) Shutdown() error {
	return c.client.Shutdown()
}
