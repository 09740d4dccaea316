package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the messaging platform's abuse limits across the whole
// process: a minimum interval between successive gateway calls and a ceiling
// on in-flight calls. One physical WhatsApp connection backs all sends, so a
// single Pacer is shared by every concurrently sending campaign.
type Pacer struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

// NewPacer creates a pacer with the given minimum inter-send interval and
// in-flight ceiling. An interval <= 0 disables rate spacing.
func NewPacer(minInterval time.Duration, maxInFlight int) *Pacer {
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		slots:   make(chan struct{}, maxInFlight),
	}
}

// Acquire blocks until a concurrency slot and a rate token are both available
// or the context is cancelled. The returned release func must be called once
// per successful Acquire; calling it more than once is safe.
func (p *Pacer) Acquire(ctx context.Context) (func(), error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := p.limiter.Wait(ctx); err != nil {
		<-p.slots
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-p.slots })
	}
	return release, nil
}

// SetInterval retunes the minimum inter-send interval at runtime. This is how
// the operator-facing bot delay setting reaches in-flight dispatch.
func (p *Pacer) SetInterval(minInterval time.Duration) {
	if minInterval <= 0 {
		p.limiter.SetLimit(rate.Inf)
		return
	}
	p.limiter.SetLimit(rate.Every(minInterval))
}

// MaxInFlight returns the concurrency ceiling.
func (p *Pacer) MaxInFlight() int {
	return cap(p.slots)
}
