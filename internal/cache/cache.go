// Package cache keeps computed catalog embeddings across runs so the
// provider is asked for them once per catalog and model.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// New builds the cache described by cfg. With the disk layer disabled the
// cache still memoizes in memory for the life of the process.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled || cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// CatalogKey generates a cache key for a catalog embedded by one provider/model
func CatalogKey(provider, fingerprint string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + fingerprint))
	return "clauserisk:v1:" + hex.EncodeToString(hash[:])
}

type vectorsEntry struct {
	Provider string      `json:"provider"`
	Vectors  [][]float32 `json:"vectors"`
}

// GetVectors returns cached embeddings stored under key by provider.
// An entry written by another provider is treated as a miss.
func GetVectors(c Cache, key, provider string) ([][]float32, bool) {
	data, found := c.Get(key)
	if !found {
		return nil, false
	}

	var entry vectorsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Provider != provider || len(entry.Vectors) == 0 {
		return nil, false
	}

	return entry.Vectors, true
}

// SetVectors stores embeddings under key
func SetVectors(c Cache, key, provider string, vectors [][]float32, ttl time.Duration) error {
	data, err := json.Marshal(vectorsEntry{Provider: provider, Vectors: vectors})
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
