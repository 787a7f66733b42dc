package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Keys live in their own namespace, disjoint from session keys.
const keyPrefix = "rate:limiter:"

// Limiter decides whether a request from the given client identity may
// proceed. A store failure is returned as an error; the admission
// layer treats it as a denial (fail-closed).
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// Counter is the subset of the key-value store the limiter needs.
type Counter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Policy is the admission budget: at most Limit requests per identity
// within a window of WindowSeconds, anchored to the first request
// after an idle period rather than to calendar boundaries.
type Policy struct {
	Limit         int64
	WindowSeconds int
}

// WindowLimiter is the shared fixed-window limiter backed by the
// key-value store. The counter increment is atomic across instances;
// the increment that creates the key arms the window TTL.
type WindowLimiter struct {
	counter Counter
	policy  Policy
}

func NewWindowLimiter(counter Counter, policy Policy) *WindowLimiter {
	if policy.Limit <= 0 {
		policy.Limit = 100
	}
	if policy.WindowSeconds <= 0 {
		policy.WindowSeconds = 60
	}
	return &WindowLimiter{counter: counter, policy: policy}
}

func (l *WindowLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	key := keyPrefix + identity

	window := time.Duration(l.policy.WindowSeconds) * time.Second
	count, err := l.counter.Increment(ctx, key, window)
	if err != nil {
		return false, fmt.Errorf("ratelimit: counter increment failed: %w", err)
	}

	return count <= l.policy.Limit, nil
}
