package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the complete clauserisk configuration
type Config struct {
	Embedding    EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	Analysis     AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
	Catalog      Catalog           `yaml:"catalog" mapstructure:"catalog"`
}

// EmbeddingConfig selects and tunes the embedding provider
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // ollama, openai, hash
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	BatchSize  int           `yaml:"batch_size" mapstructure:"batch_size"` // Max inputs per provider request
	Dimensions int           `yaml:"dimensions" mapstructure:"dimensions"` // Only used by the hash provider
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// AnalysisConfig tunes ranking and risk classification
type AnalysisConfig struct {
	TopN          int     `yaml:"top_n" mapstructure:"top_n"`
	Contamination float64 `yaml:"contamination" mapstructure:"contamination"` // Expected anomaly fraction, (0, 0.5]
	Trees         int     `yaml:"trees" mapstructure:"trees"`
	MaxSamples    int     `yaml:"max_samples" mapstructure:"max_samples"`
	Seed          int64   `yaml:"seed" mapstructure:"seed"`
	PreviewChars  int     `yaml:"preview_chars" mapstructure:"preview_chars"`
	MaxDocBytes   int64   `yaml:"max_document_bytes" mapstructure:"max_document_bytes"`
}

// CacheConfig controls the catalog embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig throttles requests to the embedding provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables limiting
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ServerConfig controls the HTTP analysis endpoint
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Color         bool `yaml:"color" mapstructure:"color"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "all-minilm",
			Timeout:    60 * time.Second,
			BatchSize:  256,
			Dimensions: 384,
		},
		Analysis: AnalysisConfig{
			TopN:          5,
			Contamination: 0.3,
			Trees:         100,
			MaxSamples:    256,
			Seed:          42,
			PreviewChars:  1000,
			MaxDocBytes:   10_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 0,
			BurstSize:         5,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			MaxBodyBytes:   2_000_000,
			RequestTimeout: 2 * time.Minute,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Color:         true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Catalog: DefaultCatalog(),
	}
}

// Validate rejects configurations the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Analysis.TopN < 1 {
		return fmt.Errorf("analysis.top_n must be >= 1, got %d", c.Analysis.TopN)
	}
	if c.Analysis.Contamination <= 0 || c.Analysis.Contamination > 0.5 {
		return fmt.Errorf("analysis.contamination must be in (0, 0.5], got %v", c.Analysis.Contamination)
	}
	if c.Analysis.Trees < 1 {
		return fmt.Errorf("analysis.trees must be >= 1, got %d", c.Analysis.Trees)
	}
	if c.Analysis.MaxSamples < 2 {
		return fmt.Errorf("analysis.max_samples must be >= 2, got %d", c.Analysis.MaxSamples)
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be >= 1, got %d", c.Embedding.BatchSize)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "clauserisk", "cache")
	}
	return filepath.Join(home, ".clauserisk", "cache")
}
