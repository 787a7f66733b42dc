package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rinkore1/BookServer/internal/kv"
)

func TestWindowLimiter_AllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	lim := NewWindowLimiter(kv.NewMemoryStore(), Policy{Limit: 3, WindowSeconds: 60})

	want := []bool{true, true, true, false}
	for i, expected := range want {
		got, err := lim.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if got != expected {
			t.Fatalf("call %d: expected allowed=%v, got %v", i, expected, got)
		}
	}
}

func TestWindowLimiter_WindowResets(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
	lim := NewWindowLimiter(store, Policy{Limit: 2, WindowSeconds: 60})

	lim.Allow(ctx, "client")
	lim.Allow(ctx, "client")
	if ok, _ := lim.Allow(ctx, "client"); ok {
		t.Fatal("expected denial once limit exhausted")
	}

	now = now.Add(61 * time.Second)

	ok, err := lim.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh window to allow")
	}
}

func TestWindowLimiter_IdentitiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	lim := NewWindowLimiter(kv.NewMemoryStore(), Policy{Limit: 1, WindowSeconds: 60})

	if ok, _ := lim.Allow(ctx, "a"); !ok {
		t.Fatal("expected first request for a to pass")
	}
	if ok, _ := lim.Allow(ctx, "a"); ok {
		t.Fatal("expected a to be exhausted")
	}

	// b has its own counter
	if ok, _ := lim.Allow(ctx, "b"); !ok {
		t.Fatal("expected b to be unaffected by a")
	}
}

type failingCounter struct{}

func (failingCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestWindowLimiter_StoreFailureDenies(t *testing.T) {
	lim := NewWindowLimiter(failingCounter{}, Policy{Limit: 100, WindowSeconds: 60})

	ok, err := lim.Allow(context.Background(), "client")
	if err == nil {
		t.Fatal("expected error when the store is down")
	}
	if ok {
		t.Fatal("store failure must not admit the request")
	}
}

func TestLocalLimiter_Burst(t *testing.T) {
	ctx := context.Background()
	lim := NewLocalLimiter(Policy{Limit: 3, WindowSeconds: 60})

	for i := 0; i < 3; i++ {
		if ok, _ := lim.Allow(ctx, "c"); !ok {
			t.Fatalf("expected call %d within burst to pass", i)
		}
	}
	if ok, _ := lim.Allow(ctx, "c"); ok {
		t.Fatal("expected denial once the bucket is drained")
	}

	// another identity has a full bucket
	if ok, _ := lim.Allow(ctx, "d"); !ok {
		t.Fatal("expected other identity to pass")
	}
}
