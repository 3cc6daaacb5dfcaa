// Package publisher announces finished exports on a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamExportsCompleted receives one entry per finished export job.
const StreamExportsCompleted = "exports.completed"

// RedisPublisher publishes events to Redis streams.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisPublisher creates a publisher from an existing client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: StreamExportsCompleted,
		maxLen: 1000,
	}
}

// Stream returns the stream name entries are added to.
func (rp *RedisPublisher) Stream() string {
	return rp.stream
}

// PublishExport adds event as JSON to the exports stream. The stream is
// trimmed to roughly the last thousand entries.
func (rp *RedisPublisher) PublishExport(ctx context.Context, event any) error {
	values, err := streamValues(event, time.Now())
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rp.stream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}

func streamValues(event any, now time.Time) (map[string]interface{}, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode stream event: %w", err)
	}
	return map[string]interface{}{
		"data":      string(data),
		"timestamp": now.Unix(),
	}, nil
}
