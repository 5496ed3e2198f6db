package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer inserts a delay before an outbound request. Implementations must be
// safe for concurrent use.
type Pacer interface {
	Wait(ctx context.Context) error
	SetDelay(min, max time.Duration)
}

// JitterPacer sleeps a random duration uniformly sampled from [minDelay,
// maxDelay) on every Wait call. The randomized cadence avoids the fixed
// request rhythm that scrape-detection heuristics key on.
type JitterPacer struct {
	minDelay time.Duration
	maxDelay time.Duration
	mu       sync.Mutex
}

func NewJitterPacer(minDelay, maxDelay time.Duration) *JitterPacer {
	return &JitterPacer{
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

func (p *JitterPacer) Wait(ctx context.Context) error {
	delay := p.sampleDelay()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *JitterPacer) SetDelay(min, max time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.minDelay = min
	p.maxDelay = max
}

func (p *JitterPacer) sampleDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.maxDelay <= p.minDelay {
		return p.minDelay
	}

	delta := p.maxDelay - p.minDelay
	return p.minDelay + time.Duration(rand.Int63n(int64(delta)))
}
