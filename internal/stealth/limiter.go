package stealth

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer enforces a minimum delay between outbound requests to the source
// site. Wait blocks until at least MinDelay has elapsed since the previous
// call completed, plus optional random jitter to avoid a perfectly regular
// cadence. One shared instance covers a whole run; the crawl loop is
// sequential, the mutex just keeps accidental concurrent use safe.
type Pacer struct {
	mu       sync.Mutex
	minDelay time.Duration
	jitter   time.Duration
	lastAt   time.Time
}

// NewPacer creates a pacer with the given minimum delay and jitter bound.
func NewPacer(minDelay, jitter time.Duration) *Pacer {
	return &Pacer{minDelay: minDelay, jitter: jitter}
}

// Wait suspends the caller until the pacing window has passed, honoring
// context cancellation. The window is anchored to the previous call's
// completion, not its start.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.minDelay - time.Since(p.lastAt)
	if p.jitter > 0 {
		d += rand.N(p.jitter)
	}
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.lastAt = time.Now()
	return nil
}
