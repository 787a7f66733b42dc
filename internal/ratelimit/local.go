package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process token-bucket limiter for single-node
// deployments that run without a shared store. The bucket refills at
// Limit/Window and bursts up to Limit, which approximates the shared
// limiter's budget without its boundary bursts.
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry

	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(policy Policy) *LocalLimiter {
	if policy.Limit <= 0 {
		policy.Limit = 100
	}
	if policy.WindowSeconds <= 0 {
		policy.WindowSeconds = 60
	}
	return &LocalLimiter{
		entries:      make(map[string]*localEntry),
		rps:          rate.Limit(float64(policy.Limit) / float64(policy.WindowSeconds)),
		burst:        int(policy.Limit),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	return l.get(identity).Allow(), nil
}

func (l *LocalLimiter) get(identity string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[identity]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[identity] = &localEntry{lim: lim, lastSeen: now}
	return lim
}

func (l *LocalLimiter) cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor evicts idle identities periodically until the context
// is cancelled.
func (l *LocalLimiter) StartJanitor(ctx context.Context) {
	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.cleanup()
			}
		}
	}()
}
