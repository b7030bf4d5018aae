package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyText          = errors.New("text cannot be empty")
	ErrBatchTooLarge      = errors.New("batch size exceeds limit")
	ErrUnsupportedBackend = errors.New("unsupported embedding backend")
	ErrUnavailable        = errors.New("embedding model unavailable")
)

const (
	// MaxInputChars is the maximum text length sent to the model.
	// Longer chunk content is cut and marked so downstream consumers
	// know the text was truncated.
	MaxInputChars = 8000

	// TruncationMarker is appended to truncated input.
	TruncationMarker = " [truncated]"

	// MaxBatchSize bounds a single batch request.
	MaxBatchSize = 100
)

// Embedding is a fixed-length dense vector with provenance metadata.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // content hash of the (possibly truncated) input
}

// EmbeddingRequest asks for a single embedding.
type EmbeddingRequest struct {
	Text string
}

// BatchEmbeddingRequest asks for embeddings of multiple texts.
type BatchEmbeddingRequest struct {
	Texts []string
}

// BatchEmbeddingResponse carries a batch result.
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedder converts text into dense vectors via an external model.
type Embedder interface {
	// GenerateEmbedding embeds a single text.
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)

	// GenerateBatch embeds multiple texts.
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension returns the vector length this backend produces.
	Dimension() int

	// Provider returns the backend name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Truncate cuts text to MaxInputChars and appends the truncation
// marker. Text within the limit is returned unchanged.
func Truncate(text string) string {
	if len(text) <= MaxInputChars {
		return text
	}
	return text[:MaxInputChars] + TruncationMarker
}

// ComputeHash returns the hex SHA-256 of text. Callers hash the
// truncated form, so identical chunk content across books shares a
// cache entry.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Cache is a shared in-memory LRU of embeddings keyed by content hash.
// Writes are idempotent (a hash always maps to the same vector), so the
// LRU's own locking is all the synchronization required.
type Cache struct {
	cache *lru.Cache[string, *Embedding]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which we just fixed.
		cache, _ = lru.New[string, *Embedding](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a deep copy of a cached embedding, so caller mutations
// cannot pollute the cache.
func (c *Cache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	vectorCopy := make([]float32, len(emb.Vector))
	copy(vectorCopy, emb.Vector)

	return &Embedding{
		Vector:    vectorCopy,
		Dimension: emb.Dimension,
		Provider:  emb.Provider,
		Model:     emb.Model,
		Hash:      emb.Hash,
	}, true
}

// Set stores an embedding; eviction is handled by the LRU.
func (c *Cache) Set(hash string, emb *Embedding) {
	c.cache.Add(hash, emb)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ValidateRequest validates a single-embedding request.
func ValidateRequest(req EmbeddingRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest validates a batch request.
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range req.Texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
