package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRateRepoIncrementWindowKeepsFirstExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	repo := NewRateRepo(client)
	ctx := context.Background()

	count, ttl, err := repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if count != 1 || ttl <= 0 || ttl > 10*time.Second {
		t.Fatalf("unexpected first window state: count=%d ttl=%s", count, ttl)
	}

	mr.FastForward(4 * time.Second)

	count, ttl, err = repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("second increment: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if ttl > 6*time.Second {
		t.Fatalf("expected window expiry to be kept, got ttl=%s", ttl)
	}

	state, _, err := repo.WindowState(ctx, "rate:test")
	if err != nil {
		t.Fatalf("window state: %v", err)
	}
	if state != 2 {
		t.Fatalf("expected state 2, got %d", state)
	}

	mr.FastForward(7 * time.Second)

	state, ttl, err = repo.WindowState(ctx, "rate:test")
	if err != nil {
		t.Fatalf("window state after expiry: %v", err)
	}
	if state != 0 || ttl != 0 {
		t.Fatalf("expected empty window after expiry, got count=%d ttl=%s", state, ttl)
	}
}

func TestRateRepoWithoutClient(t *testing.T) {
	repo := NewRateRepo(nil)
	if _, _, err := repo.IncrementWindow(context.Background(), "k", time.Second); err != ErrClientUnavailable {
		t.Fatalf("expected ErrClientUnavailable, got %v", err)
	}
}

func TestNewClientRequiresAddr(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "", 0); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewClientPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() { _ = client.Close() }()
}
