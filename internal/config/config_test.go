package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfgrep/shelfgrep/internal/embedder"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, embedder.BackendOllama, cfg.Embedding.Backend)
	assert.Equal(t, embedder.DefaultOllamaModel, cfg.Embedding.Model)
	assert.Equal(t, embedder.OllamaDimension, cfg.Embedding.Dimension)
	assert.Equal(t, filepath.Join(dir, "library.db"), cfg.Database.Path)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.InDelta(t, 0.1, cfg.Search.Threshold, 1e-9)
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[database]
path = "/data/books.db"

[embedding]
backend = "openai"
api_key = "sk-test"
model = "text-embedding-3-small"

[search]
limit = 25
threshold = 0.2
cache_ttl = "30m"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/books.db", cfg.Database.Path)
	assert.Equal(t, embedder.BackendOpenAI, cfg.Embedding.Backend)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.InDelta(t, 0.2, cfg.Search.Threshold, 1e-9)
	assert.Equal(t, 30*time.Minute, cfg.SearchCacheTTL())

	// File did not set workers, so the default holds.
	assert.Equal(t, 4, cfg.Ingest.Workers)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
backend = "ollama"
base_url = "http://file-host:11434"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	t.Setenv("SHELFGREP_EMBEDDING_URL", "http://env-host:11434")
	t.Setenv("SHELFGREP_SEARCH_LIMIT", "42")
	t.Setenv("SHELFGREP_DB_PATH", "/tmp/env.db")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://env-host:11434", cfg.Embedding.BaseURL)
	assert.Equal(t, 42, cfg.Search.Limit)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
backend = "openai"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Embedding.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[embedding]\nbackend = \"cohere\"\n"},
		{"threshold out of range", "[search]\nthreshold = 1.5\n"},
		{"negative limit", "[search]\nlimit = -1\n"},
		{"bad cache ttl", "[search]\ncache_ttl = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(tt.content), 0600))

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Database.Path = "/data/books.db"
	cfg.Search.Limit = 7
	require.NoError(t, Save(cfg, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/data/books.db", loaded.Database.Path)
	assert.Equal(t, 7, loaded.Search.Limit)
}

func TestEmbedderConfig(t *testing.T) {
	cfg := Default()
	cfg.Embedding.TimeoutMS = 5000

	ec := cfg.EmbedderConfig()
	assert.Equal(t, embedder.BackendOllama, ec.Backend)
	assert.Equal(t, 5*time.Second, ec.Timeout)
	assert.Equal(t, embedder.DefaultCacheSize, ec.CacheSize)
}
