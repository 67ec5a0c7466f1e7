package embed

import (
	"context"
	"fmt"
)

// Batcher splits large inputs into provider-sized requests and reassembles
// the vectors in input order
type Batcher struct {
	provider Provider
	size     int
	limiter  Waiter
	key      string
}

// NewBatcher wraps a provider. size <= 0 sends everything in one request;
// a nil limiter disables rate limiting.
func NewBatcher(p Provider, size int, limiter Waiter, key string) *Batcher {
	return &Batcher{
		provider: p,
		size:     size,
		limiter:  limiter,
		key:      key,
	}
}

// Name returns the wrapped provider's name
func (b *Batcher) Name() string {
	return b.provider.Name()
}

// Model returns the wrapped provider's model
func (b *Batcher) Model() string {
	return b.provider.Model()
}

// IsAvailable delegates to the wrapped provider
func (b *Batcher) IsAvailable(ctx context.Context) bool {
	return b.provider.IsAvailable(ctx)
}

// Embed embeds texts batch by batch
func (b *Batcher) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	size := b.size
	if size <= 0 || size > len(texts) {
		size = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[start:end]

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx, b.key); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		out, err := b.provider.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		if len(out) != len(chunk) {
			return nil, fmt.Errorf("batch %d-%d: provider returned %d vectors for %d texts", start, end, len(out), len(chunk))
		}
		vectors = append(vectors, out...)
	}

	return vectors, nil
}
