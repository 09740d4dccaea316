package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// MessagingGateway delivers a message to a phone number over the real
// transport. Implementations must be safe for concurrent use and may be slow.
type MessagingGateway interface {
	Send(ctx context.Context, phone, message string) error
}

// mockGateway simulates delivery with configurable latency and failure rate
type mockGateway struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewMockGateway creates a gateway stand-in for local runs.
// successRate: probability of success (0.0 to 1.0), default 0.92 (92%)
func NewMockGateway(successRate float64) MessagingGateway {
	if successRate <= 0 || successRate > 1.0 {
		successRate = 0.92
	}

	return &mockGateway{
		successRate: successRate,
		minDelay:    50 * time.Millisecond,
		maxDelay:    200 * time.Millisecond,
	}
}

// Send simulates delivering a message
func (g *mockGateway) Send(ctx context.Context, phone, message string) error {
	delay := g.minDelay + time.Duration(rand.Int63n(int64(g.maxDelay-g.minDelay)))

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if rand.Float64() > g.successRate {
		return fmt.Errorf("mock gateway failed: simulated network error")
	}

	return nil
}
