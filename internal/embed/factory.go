package embed

import (
	"fmt"
	"strings"
)

// NewProvider creates an embedding provider based on configuration.
// Requests are split into batches of cfg.BatchSize; when limiter is non-nil
// every batch waits for rate limit clearance first.
func NewProvider(config Config, limiter Waiter) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "ollama":
		p, err = NewOllamaProvider(config)

	case "openai":
		p, err = NewOpenAIProvider(config)

	case "hash":
		p, err = NewHashProvider(config.Dimensions)

	case "":
		return nil, fmt.Errorf("no embedding provider configured")

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, openai, hash)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewBatcher(p, config.BatchSize, limiter, limiterKey(config)), nil
}

// limiterKey is the URL the rate limiter buckets requests under
func limiterKey(config Config) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	switch strings.ToLower(config.Provider) {
	case "openai":
		return "https://api.openai.com/v1"
	case "ollama":
		return defaultOllamaURL
	}
	return "local://" + strings.ToLower(config.Provider)
}
