package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes events as JSON on a pub/sub channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisSink builds a sink over an existing client. The client is owned by
// the caller and is not closed by the sink.
func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Publish sends the event to the channel.
func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, body).Err()
}

// Close is a no-op.
func (s *RedisSink) Close() error { return nil }
