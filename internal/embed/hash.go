package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashProvider is a deterministic, offline embedder. It hashes word
// unigrams and bigrams into a fixed number of signed buckets and
// L2-normalizes the result. Texts sharing vocabulary land close together.
type HashProvider struct {
	dims int
}

// NewHashProvider creates a hash provider with the given dimensionality
func NewHashProvider(dims int) (*HashProvider, error) {
	if dims <= 0 {
		dims = DefaultConfig().Dimensions
	}
	if dims < 8 {
		return nil, fmt.Errorf("hash provider needs at least 8 dimensions, got %d", dims)
	}
	return &HashProvider{dims: dims}, nil
}

// Name returns the provider name
func (p *HashProvider) Name() string {
	return "hash"
}

// Model describes the vector layout
func (p *HashProvider) Model() string {
	return fmt.Sprintf("fnv-%d", p.dims)
}

// IsAvailable always succeeds; nothing to connect to
func (p *HashProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Embed hashes every text independently
func (p *HashProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = p.vector(text)
	}
	return vectors, nil
}

func (p *HashProvider) vector(text string) []float32 {
	tokens := tokenize(text)

	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}

	acc := make([]float64, p.dims)
	for feature, n := range counts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(feature))
		sum := h.Sum64()

		bucket := int(sum % uint64(p.dims))
		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		acc[bucket] += sign * (1 + math.Log(float64(n)))
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, p.dims)
	if norm == 0 {
		return out
	}
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

// tokenize lowercases text and splits it on anything that is not a letter or digit
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
