package integration

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/shelfgrep/shelfgrep/internal/embedder"
)

// MockEmbedder generates deterministic unit vectors from a text hash,
// so identical passages always land on the same point and integration
// tests never need a live model.
type MockEmbedder struct {
	dimension int
	provider  string
	model     string
}

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		provider:  "mock",
		model:     "mock-v1",
	}
}

// GenerateEmbedding generates a deterministic fake embedding
func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	if req.Text == "" {
		return nil, embedder.ErrEmptyText
	}

	hash := sha256.Sum256([]byte(req.Text))
	vector := make([]float32, m.dimension)
	for i := 0; i < m.dimension; i++ {
		idx := (i * 4) % 32
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		// Spread hash bytes over [-1, 1]
		vector[i] = (float32(val)/float32(1<<32))*2 - 1
	}
	vector = embedder.NormalizeVector(vector)

	return &embedder.Embedding{
		Vector:    vector,
		Dimension: m.dimension,
		Provider:  m.provider,
		Model:     m.model,
		Hash:      embedder.ComputeHash(req.Text),
	}, nil
}

// GenerateBatch generates embeddings for multiple texts
func (m *MockEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	if len(req.Texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	embeddings := make([]*embedder.Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := m.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}

	return &embedder.BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   m.provider,
		Model:      m.model,
	}, nil
}

// Dimension returns the embedding dimension
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

// Provider returns the provider name
func (m *MockEmbedder) Provider() string {
	return m.provider
}

// Model returns the model name
func (m *MockEmbedder) Model() string {
	return m.model
}

// Close releases resources (no-op for mock)
func (m *MockEmbedder) Close() error {
	return nil
}
