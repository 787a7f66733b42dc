package session

import (
	"context"
	"testing"
	"time"

	"github.com/Rinkore1/BookServer/internal/kv"
)

func TestManager_IssueValidateResolve(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	mgr := NewManager(store, 30*time.Minute)

	token, err := mgr.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	ok, err := mgr.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !ok {
		t.Fatal("expected token to be valid")
	}

	userID, err := mgr.ResolveUser(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestManager_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(kv.NewMemoryStore(), time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := mgr.Issue(ctx, "user-1")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = true
	}
}

func TestManager_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
	mgr := NewManager(store, 30*time.Minute)

	token, err := mgr.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(29 * time.Minute)
	if ok, _ := mgr.Validate(ctx, token); !ok {
		t.Fatal("expected token to still be valid before TTL")
	}

	now = now.Add(2 * time.Minute)
	ok, err := mgr.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Fatal("expected token to expire after TTL")
	}

	if _, err := mgr.ResolveUser(ctx, token); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_RevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(kv.NewMemoryStore(), time.Minute)

	token, err := mgr.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := mgr.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if ok, _ := mgr.Validate(ctx, token); ok {
		t.Fatal("expected token to be invalid after revoke")
	}

	// revoking again must not error
	if err := mgr.Revoke(ctx, token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}
