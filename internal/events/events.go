// Package events fans lifecycle changes out to other services (SSE gateway,
// analytics) over Redis pub/sub. Publishing is best-effort: callers log
// failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel names. The payload "type" field repeats the channel.
const (
	JobSaved         = "EVENT_JOB_SAVED"
	JobStatusChanged = "EVENT_JOB_STATUS_CHANGED"
	JobRemoved       = "EVENT_JOB_REMOVED"
	ResumeProcessed  = "EVENT_RESUME_PROCESSED"
)

// Publisher sends a typed event with string fields.
type Publisher interface {
	Publish(ctx context.Context, channel string, fields map[string]string) error
}

// RedisPublisher publishes JSON payloads with PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, fields map[string]string) error {
	payload, err := Encode(channel, fields)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Encode builds the wire payload: the fields plus "type".
func Encode(channel string, fields map[string]string) ([]byte, error) {
	msg := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		msg[k] = v
	}
	msg["type"] = channel
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", channel, err)
	}
	return b, nil
}

// Nop discards every event. Used when REDIS_URL is unset.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, map[string]string) error { return nil }
