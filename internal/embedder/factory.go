package embedder

import (
	"fmt"
	"time"
)

// DefaultCacheSize caps the in-memory LRU of embedding results.
const DefaultCacheSize = 1000

// Config selects and parameterizes an embedding backend. Callers fill it
// from the application config layer; the factory never reads the
// environment itself.
type Config struct {
	// Backend is one of BackendOllama or BackendOpenAI.
	Backend string
	// BaseURL overrides the backend's default endpoint.
	BaseURL string
	// APIKey authenticates OpenAI-compatible backends. Ignored by Ollama.
	APIKey string
	// Model names the embedding model; empty means backend default.
	Model string
	// Dimension is the expected vector width; zero means backend default.
	Dimension int
	// CacheSize is the LRU entry cap; zero means DefaultCacheSize,
	// negative disables caching.
	CacheSize int
	// Timeout bounds a single HTTP request; zero means DefaultTimeout.
	Timeout time.Duration
}

// New builds an Embedder for the configured backend.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize >= 0 {
		size := cfg.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		cache = NewCache(size)
	}

	switch cfg.Backend {
	case BackendOllama, "":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Dimension, cfg.Timeout, cache), nil
	case BackendOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension, cfg.Timeout, cache)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
