// Package embed maps text to semantic vectors and compares them.
package embed

import (
	"context"
	"time"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Provider defines the interface for embedding providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model identifier used for embeddings
	Model() string

	// Embed returns one vector per input text, aligned 1:1 and in order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Waiter blocks until a request against key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Config holds embedding provider configuration
type Config struct {
	// Provider name: "ollama", "openai", "hash"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for a single API request
	Timeout time.Duration

	// BatchSize caps the number of texts sent per request
	BatchSize int

	// Dimensions of the hash provider's vectors
	Dimensions int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:   "ollama",
		Model:      "all-minilm",
		Timeout:    60 * time.Second,
		BatchSize:  256,
		Dimensions: 384,
	}
}

// ConfigFromModel converts model.EmbeddingConfig to embed.Config
func ConfigFromModel(modelConfig model.EmbeddingConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		BatchSize:  modelConfig.BatchSize,
		Dimensions: modelConfig.Dimensions,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
	}
}

// Label returns "provider/model" for reports and logs
func Label(p Provider) string {
	if p.Model() == "" {
		return p.Name()
	}
	return p.Name() + "/" + p.Model()
}
