// Package notify hands completions to downstream consumers such as the
// chronicle, reward and voice services.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wellquest/questmap/internal/wellquest"
)

// Channel is the Redis pub/sub channel completions are published on.
const Channel = "wellquest:completions"

type Publisher interface {
	Publish(ctx context.Context, sessionID string, c wellquest.Completion) error
}

// Message is the JSON payload published for each completion.
type Message struct {
	SessionID  string               `json:"sessionId"`
	Completion wellquest.Completion `json:"completion"`
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: Channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, sessionID string, c wellquest.Completion) error {
	data, err := json.Marshal(Message{SessionID: sessionID, Completion: c})
	if err != nil {
		return fmt.Errorf("encoding completion: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing completion %s: %w", c.QuestID, err)
	}
	return nil
}

// Nop discards completions. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, wellquest.Completion) error { return nil }
