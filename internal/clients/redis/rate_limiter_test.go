package redis

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/lms-backend/internal/platform/logger"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	rl := NewRateLimiter(logger.Nop(), store, "login", 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _, err := rl.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, retry, err := rl.Allow(ctx, "10.0.0.1")
	if err != nil || ok {
		t.Fatalf("4th attempt should be rejected: ok=%v err=%v", ok, err)
	}
	if retry != time.Minute {
		t.Fatalf("expected retry after the window, got %s", retry)
	}
	if ok, _, _ := rl.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other keys should have their own window")
	}
}

func TestNopRateLimiter(t *testing.T) {
	rl := NewRateLimiter(logger.Nop(), nil, "login", 1, time.Minute)
	for i := 0; i < 5; i++ {
		if ok, _, err := rl.Allow(context.Background(), "k"); !ok || err != nil {
			t.Fatalf("nop limiter should always allow")
		}
	}
}
