// Package notify forwards portal activity events to external consumers.
// The notifier collaborator subscribes to the redis channel; nothing in
// the request path waits on it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	portal "github.com/hiredesk/portal"
)

// DefaultChannel is the pub/sub channel activity events go out on.
const DefaultChannel = "portal.activity"

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// RedisSink publishes activity events as JSON to a pub/sub channel.
type RedisSink struct {
	rdb     *redis.Client
	channel string
	logger  portal.Logger
}

// NewRedisSink wraps a connected client. An empty channel uses DefaultChannel.
func NewRedisSink(rdb *redis.Client, channel string, logger portal.Logger) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{
		rdb:     rdb,
		channel: channel,
		logger:  logger,
	}
}

// Record implements portal.ActivitySink. Publish failures are logged and
// swallowed so audit delivery never fails a request.
func (s *RedisSink) Record(ctx context.Context, event portal.ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		if s.logger != nil {
			s.logger.Warn("publish activity event failed", "channel", s.channel, "error", err)
		}
		return nil
	}

	return nil
}
