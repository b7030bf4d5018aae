package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shelfgrep/shelfgrep/internal/embedder"
)

// Config is the full shelfgrep configuration. Values resolve in three
// layers: built-in defaults, then ~/.shelfgrep/config.toml, then
// SHELFGREP_* environment variables.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Ingest    IngestConfig    `toml:"ingest"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type EmbeddingConfig struct {
	Backend   string `toml:"backend"` // "ollama" or "openai"
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension"`
	TimeoutMS int    `toml:"timeout_ms"`
	CacheSize int    `toml:"cache_size"`
}

type SearchConfig struct {
	Limit     int     `toml:"limit"`
	Threshold float64 `toml:"threshold"`
	CacheTTL  string  `toml:"cache_ttl"` // Go duration string, e.g. "1h"
}

type IngestConfig struct {
	Workers       int `toml:"workers"`
	MaxChunkChars int `toml:"max_chunk_chars"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // resolved to <config dir>/library.db at load time
		},
		Embedding: EmbeddingConfig{
			Backend:   embedder.BackendOllama,
			BaseURL:   embedder.DefaultOllamaBaseURL,
			Model:     embedder.DefaultOllamaModel,
			Dimension: embedder.OllamaDimension,
			TimeoutMS: int(embedder.DefaultTimeout / time.Millisecond),
			CacheSize: embedder.DefaultCacheSize,
		},
		Search: SearchConfig{
			Limit:     10,
			Threshold: 0.1,
			CacheTTL:  "1h",
		},
		Ingest: IngestConfig{
			Workers:       4,
			MaxChunkChars: 0, // chunker default
		},
	}
}

// DefaultDir returns the shelfgrep config directory, ~/.shelfgrep.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".shelfgrep"), nil
}

// Load builds the effective configuration. An empty configDir means
// ~/.shelfgrep. A missing config file is fine; a malformed one is not.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	cfg := Default()

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file yet, defaults apply.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(configDir, "library.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to <configDir>/config.toml, creating
// the directory if needed.
func Save(cfg *Config, configDir string) error {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0600)
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.Embedding.Backend {
	case embedder.BackendOllama, embedder.BackendOpenAI, "":
	default:
		return fmt.Errorf("unknown embedding backend %q", c.Embedding.Backend)
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("search threshold must be in [0, 1], got %g", c.Search.Threshold)
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search limit cannot be negative")
	}
	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest workers cannot be negative")
	}
	if c.Search.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Search.CacheTTL); err != nil {
			return fmt.Errorf("invalid search cache_ttl %q: %w", c.Search.CacheTTL, err)
		}
	}
	return nil
}

// EmbedderConfig translates the embedding section into the embedder
// package's config.
func (c *Config) EmbedderConfig() embedder.Config {
	return embedder.Config{
		Backend:   c.Embedding.Backend,
		BaseURL:   c.Embedding.BaseURL,
		APIKey:    c.Embedding.APIKey,
		Model:     c.Embedding.Model,
		Dimension: c.Embedding.Dimension,
		CacheSize: c.Embedding.CacheSize,
		Timeout:   time.Duration(c.Embedding.TimeoutMS) * time.Millisecond,
	}
}

// SearchCacheTTL parses the configured TTL, falling back to an hour.
func (c *Config) SearchCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Search.CacheTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// applyEnv overrides config values from SHELFGREP_* variables.
func applyEnv(cfg *Config) {
	cfg.Database.Path = getEnv("SHELFGREP_DB_PATH", cfg.Database.Path)
	cfg.Embedding.Backend = getEnv("SHELFGREP_EMBEDDING_BACKEND", cfg.Embedding.Backend)
	cfg.Embedding.BaseURL = getEnv("SHELFGREP_EMBEDDING_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.APIKey = getEnv("SHELFGREP_EMBEDDING_API_KEY", cfg.Embedding.APIKey)
	cfg.Embedding.Model = getEnv("SHELFGREP_EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.Dimension = getEnvInt("SHELFGREP_EMBEDDING_DIMENSION", cfg.Embedding.Dimension)
	cfg.Search.Limit = getEnvInt("SHELFGREP_SEARCH_LIMIT", cfg.Search.Limit)
	cfg.Search.Threshold = getEnvFloat("SHELFGREP_SEARCH_THRESHOLD", cfg.Search.Threshold)
	cfg.Ingest.Workers = getEnvInt("SHELFGREP_INGEST_WORKERS", cfg.Ingest.Workers)

	// OPENAI_API_KEY works as a conventional fallback.
	if cfg.Embedding.APIKey == "" && cfg.Embedding.Backend == embedder.BackendOpenAI {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
