package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDomainLimiterAllowsBurst(t *testing.T) {
	dl := NewDomainLimiter(1.0, 3)
	for i := 0; i < 3; i++ {
		if !dl.Allow("https://example.com/a") {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if dl.Allow("https://example.com/a") {
		t.Error("request beyond burst should be throttled")
	}
}

func TestDomainLimiterIsPerHost(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)
	if !dl.Allow("https://a.example.com/") {
		t.Fatal("first request to a.example.com should pass")
	}
	if !dl.Allow("https://b.example.com/") {
		t.Error("different host must have its own bucket")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	_ = dl.Wait(context.Background(), "https://example.com/") // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := dl.Wait(ctx, "https://example.com/"); err == nil {
		t.Error("expected context deadline error while throttled")
	}
}

func TestInvalidURLPassesThrough(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)
	if err := dl.Wait(context.Background(), "::not-a-url"); err != nil {
		t.Errorf("invalid URL should not block: %v", err)
	}
}
