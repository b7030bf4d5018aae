package embedder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Truncate("hello"))
	})

	t.Run("exactly at limit unchanged", func(t *testing.T) {
		text := strings.Repeat("a", MaxInputChars)
		assert.Equal(t, text, Truncate(text))
	})

	t.Run("over limit cut and marked", func(t *testing.T) {
		text := strings.Repeat("a", MaxInputChars+500)
		got := Truncate(text)
		assert.Len(t, got, MaxInputChars+len(TruncationMarker))
		assert.True(t, strings.HasSuffix(got, TruncationMarker))
	})
}

func TestComputeHash(t *testing.T) {
	h1 := ComputeHash("the whale")
	h2 := ComputeHash("the whale")
	h3 := ComputeHash("the ship")

	assert.Equal(t, h1, h2, "identical content must hash identically")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestCache(t *testing.T) {
	cache := NewCache(2)

	emb := &Embedding{
		Vector:    []float32{0.1, 0.2, 0.3},
		Dimension: 3,
		Provider:  BackendOllama,
		Model:     DefaultOllamaModel,
		Hash:      "abc",
	}
	cache.Set("abc", emb)

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, emb.Vector, got.Vector)
	assert.Equal(t, emb.Model, got.Model)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheReturnsCopy(t *testing.T) {
	cache := NewCache(10)
	cache.Set("k", &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3})

	first, ok := cache.Get("k")
	require.True(t, ok)
	first.Vector[0] = 99

	second, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, float32(1), second.Vector[0], "caller mutation must not reach the cache")
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", &Embedding{Hash: "a"})
	cache.Set("b", &Embedding{Hash: "b"})
	cache.Set("c", &Embedding{Hash: "c"})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestValidateRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateRequest(EmbeddingRequest{}), ErrEmptyText)
	assert.NoError(t, ValidateRequest(EmbeddingRequest{Text: "x"}))
}

func TestValidateBatchRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", ""}}), ErrInvalidInput)
	assert.NoError(t, ValidateBatchRequest(BatchEmbeddingRequest{Texts: []string{"a", "b"}}))
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length after normalization", func(t *testing.T) {
		got := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, got[0], 0.0001)
		assert.InDelta(t, 0.8, got[1], 0.0001)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		got := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, got)
	})
}

func TestFactory(t *testing.T) {
	t.Run("defaults to ollama", func(t *testing.T) {
		emb, err := New(Config{})
		require.NoError(t, err)
		defer func() { _ = emb.Close() }()

		assert.Equal(t, BackendOllama, emb.Provider())
		assert.Equal(t, DefaultOllamaModel, emb.Model())
		assert.Equal(t, OllamaDimension, emb.Dimension())
	})

	t.Run("openai requires api key", func(t *testing.T) {
		_, err := New(Config{Backend: BackendOpenAI})
		assert.ErrorIs(t, err, ErrUnsupportedBackend)
	})

	t.Run("openai with key", func(t *testing.T) {
		emb, err := New(Config{Backend: BackendOpenAI, APIKey: "sk-test"})
		require.NoError(t, err)
		defer func() { _ = emb.Close() }()

		assert.Equal(t, BackendOpenAI, emb.Provider())
		assert.Equal(t, OpenAIDimension, emb.Dimension())
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		_, err := New(Config{Backend: "cohere"})
		assert.ErrorIs(t, err, ErrUnsupportedBackend)
	})
}
