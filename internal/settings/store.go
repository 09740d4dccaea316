// Package settings holds the operator-tunable bot configuration. The single
// tunable today is the inter-send delay feeding the dispatch Pacer.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
)

const sendDelayKey = "botconfig:send_delay_ms"

// Store reads and writes operator settings
type Store interface {
	// SendDelay returns the configured minimum inter-send interval, falling
	// back to the default when nothing has been stored.
	SendDelay(ctx context.Context) (time.Duration, error)

	// SetSendDelay stores a new inter-send interval.
	SetSendDelay(ctx context.Context, delay time.Duration) error
}

type redisStore struct {
	client       *redis.Client
	defaultDelay time.Duration
}

// NewRedisStore creates a settings store backed by Redis
func NewRedisStore(client *redis.Client, defaultDelay time.Duration) Store {
	return &redisStore{
		client:       client,
		defaultDelay: defaultDelay,
	}
}

// SendDelay returns the stored delay or the configured default
func (s *redisStore) SendDelay(ctx context.Context) (time.Duration, error) {
	raw, err := s.client.Get(ctx, sendDelayKey).Result()
	if err == redis.Nil {
		return s.defaultDelay, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read send delay: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		// Unreadable stored value; fall back rather than stall dispatch.
		return s.defaultDelay, nil
	}

	return time.Duration(ms) * time.Millisecond, nil
}

// SetSendDelay stores a new delay in milliseconds
func (s *redisStore) SetSendDelay(ctx context.Context, delay time.Duration) error {
	if delay < 0 {
		return models.ErrValidationWithMsg("send delay must be non-negative")
	}

	ms := delay.Milliseconds()
	if err := s.client.Set(ctx, sendDelayKey, strconv.FormatInt(ms, 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to store send delay: %w", err)
	}

	return nil
}
