package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://localhost:11434"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different endpoint has its own bucket
	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := limiter.Wait(ctx, "http://localhost:11434"); err != nil {
			t.Fatalf("request %d was limited with an unlimited rate: %v", i, err)
		}
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	endpoint := "https://api.openai.com/v1"

	if err := limiter.Wait(context.Background(), endpoint); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst 1 is spent; the next token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, endpoint); err == nil {
		t.Errorf("expected wait to fail (exhausted tokens)")
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	if err := limiter.Wait(ctx2, "http://localhost:11434"); err != nil {
		t.Errorf("expected other endpoint to pass: %v", err)
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	endpoint := "https://api.openai.com/v1"
	_ = limiter.Wait(context.Background(), endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, endpoint); err == nil {
		t.Error("expected wait to fail when the context expires first")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://localhost:11434/api/embed")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "localhost:11434" {
		t.Errorf("expected localhost:11434, got %s", host)
	}

	host, err = extractHost("local://hash")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "hash" {
		t.Errorf("expected hash, got %s", host)
	}

	_, err = extractHost("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
