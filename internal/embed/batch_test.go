package embed

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// recordingProvider returns [index] vectors and records request sizes
type recordingProvider struct {
	calls   []int
	counter int
	short   bool
}

func (p *recordingProvider) Name() string { return "recording" }
func (p *recordingProvider) Model() string { return "" }
func (p *recordingProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *recordingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.calls = append(p.calls, len(texts))
	out := make([][]float32, 0, len(texts))
	for range texts {
		out = append(out, []float32{float32(p.counter)})
		p.counter++
	}
	if p.short {
		return out[:len(out)-1], nil
	}
	return out, nil
}

type countingWaiter struct {
	keys []string
	err  error
}

func (w *countingWaiter) Wait(ctx context.Context, key string) error {
	w.keys = append(w.keys, key)
	return w.err
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("clause %d", i)
	}
	return out
}

func TestBatcher_SplitsAndPreservesOrder(t *testing.T) {
	inner := &recordingProvider{}
	waiter := &countingWaiter{}
	b := NewBatcher(inner, 2, waiter, "http://localhost:11434")

	vectors, err := b.Embed(context.Background(), texts(5))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if fmt.Sprint(inner.calls) != "[2 2 1]" {
		t.Errorf("expected batches [2 2 1], got %v", inner.calls)
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
	if len(waiter.keys) != 3 || waiter.keys[0] != "http://localhost:11434" {
		t.Errorf("expected one wait per batch, got %v", waiter.keys)
	}
	if b.Name() != "recording" {
		t.Errorf("unexpected name %q", b.Name())
	}
}

func TestBatcher_SingleRequestWhenUnbounded(t *testing.T) {
	inner := &recordingProvider{}
	b := NewBatcher(inner, 0, nil, "")

	if _, err := b.Embed(context.Background(), texts(7)); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(inner.calls) != 1 || inner.calls[0] != 7 {
		t.Errorf("expected a single request of 7, got %v", inner.calls)
	}
}

func TestBatcher_ShortResponse(t *testing.T) {
	b := NewBatcher(&recordingProvider{short: true}, 0, nil, "")

	if _, err := b.Embed(context.Background(), texts(3)); err == nil {
		t.Fatal("expected error when provider drops vectors")
	}
}

func TestBatcher_LimiterError(t *testing.T) {
	inner := &recordingProvider{}
	b := NewBatcher(inner, 0, &countingWaiter{err: errors.New("deadline")}, "k")

	if _, err := b.Embed(context.Background(), texts(2)); err == nil {
		t.Fatal("expected limiter error")
	}
	if len(inner.calls) != 0 {
		t.Error("provider should not be called when the limiter fails")
	}
}

func TestBatcher_Empty(t *testing.T) {
	inner := &recordingProvider{}
	vectors, err := NewBatcher(inner, 4, nil, "").Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 0 || len(inner.calls) != 0 {
		t.Error("empty input should not reach the provider")
	}
}
