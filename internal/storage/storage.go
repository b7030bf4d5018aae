package storage

import (
	"context"
	"time"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// Store defines the interface for persisting and querying the library.
type Store interface {
	// Book operations
	InsertBook(ctx context.Context, book *types.Book) error
	GetBook(ctx context.Context, bookID string) (*types.Book, error)
	GetBookBySource(ctx context.Context, filePath, title string) (*types.Book, error)
	UpdateBookGenre(ctx context.Context, bookID, genre string) error
	ListBooks(ctx context.Context) ([]*types.Book, error)
	DeleteBook(ctx context.Context, bookID string) error

	// Chunk operations
	InsertChunks(ctx context.Context, chunks []*types.Chunk) error
	GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error)
	ListChunksByBook(ctx context.Context, bookID string) ([]*types.Chunk, error)
	ListChunksMissingEmbedding(ctx context.Context, limit int) ([]*types.Chunk, error)
	GetChunkNeighbors(ctx context.Context, chunkID string) (*Neighbors, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, embedding *Embedding) error
	GetEmbedding(ctx context.Context, chunkID string) (*Embedding, error)
	DeleteEmbedding(ctx context.Context, chunkID string) error

	// Search operations
	SearchText(ctx context.Context, query string, limit int) ([]LexicalResult, error)
	SearchVector(ctx context.Context, vector []float32, threshold float64, limit int) ([]VectorResult, error)

	// Status operations
	Stats(ctx context.Context) (*LibraryStats, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// Embedding is a stored vector for one chunk
type Embedding struct {
	ID        int64
	ChunkID   string
	Vector    []byte // Serialized float32 array, little-endian
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// LexicalResult is one row from full-text search, with the book fields
// needed to build a citation.
type LexicalResult struct {
	Chunk      *types.Chunk
	BookTitle  string
	BookAuthor string
	Score      float64 // normalized BM25, higher is better
}

// VectorResult is one row from vector similarity search
type VectorResult struct {
	Chunk      *types.Chunk
	BookTitle  string
	BookAuthor string
	Similarity float64
}

// Neighbors holds a chunk's document-order context within its book.
// Prev and Next are nil at the book boundaries.
type Neighbors struct {
	Prev    *types.Chunk
	Next    *types.Chunk
	Outline []types.OutlineEntry
}

// LibraryStats contains statistics about the stored library
type LibraryStats struct {
	BooksCount        int
	ChunksCount       int
	EmbeddingsCount   int
	PendingEmbeddings int
	DatabaseSizeMB    float64
	Health            HealthStatus
}

// HealthStatus represents the health of the library database
type HealthStatus struct {
	DatabaseAccessible  bool
	EmbeddingsAvailable bool
	FTSIndexBuilt       bool
}
