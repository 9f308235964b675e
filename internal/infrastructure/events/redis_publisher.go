package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher fans session events out over redis pub/sub. Each session
// has its own channel, and each therapist has a channel carrying changes to
// their session list. Delivery is best effort.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (p *RedisPublisher) Publish(ctx context.Context, sessionID, event string, payload any) {
	p.publish(ctx, "session:"+sessionID, event, payload)
}

func (p *RedisPublisher) PublishToTherapistList(ctx context.Context, therapistID, event string, payload any) {
	p.publish(ctx, "therapist:"+therapistID+":sessions", event, payload)
}

func (p *RedisPublisher) publish(ctx context.Context, channel, event string, payload any) {
	body, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("marshal event %s failed: %v", event, err)
		return
	}
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		log.Printf("publish %s to %s failed: %v", event, channel, err)
	}
}
