package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreEnforcesLimit(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ok, err := store.TryConsume(ctx, "user-1", "accept_comment", 10, time.Hour)
		if err != nil {
			t.Fatalf("TryConsume %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	ok, err := store.TryConsume(ctx, "user-1", "accept_comment", 10, time.Hour)
	if err != nil {
		t.Fatalf("TryConsume: %v", err)
	}
	if ok {
		t.Fatal("11th attempt in the window must be denied")
	}
}

func TestMemoryStoreWindowReset(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := store.TryConsume(ctx, "user-1", "accept_comment", 2, time.Hour); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, _ := store.TryConsume(ctx, "user-1", "accept_comment", 2, time.Hour); ok {
		t.Fatal("expected denial at limit")
	}

	now = now.Add(time.Hour)
	if ok, _ := store.TryConsume(ctx, "user-1", "accept_comment", 2, time.Hour); !ok {
		t.Fatal("new window should allow again")
	}
}

func TestMemoryStoreIsolatesUsersAndActions(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	if ok, _ := store.TryConsume(ctx, "user-1", "accept_comment", 1, time.Hour); !ok {
		t.Fatal("first consume should pass")
	}
	if ok, _ := store.TryConsume(ctx, "user-1", "accept_comment", 1, time.Hour); ok {
		t.Fatal("same user and action must be limited")
	}
	if ok, _ := store.TryConsume(ctx, "user-2", "accept_comment", 1, time.Hour); !ok {
		t.Fatal("another user must have a separate window")
	}
	if ok, _ := store.TryConsume(ctx, "user-1", "upload_plan", 1, time.Hour); !ok {
		t.Fatal("another action must have a separate window")
	}
}

func TestMemoryStoreZeroLimitDisables(t *testing.T) {
	store := NewMemoryStore(nil)
	if ok, _ := store.TryConsume(context.Background(), "user-1", "accept_comment", 0, time.Hour); !ok {
		t.Fatal("zero limit disables limiting")
	}
}
