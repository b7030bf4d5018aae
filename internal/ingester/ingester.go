package ingester

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shelfgrep/shelfgrep/internal/chunker"
	"github.com/shelfgrep/shelfgrep/internal/embedder"
	"github.com/shelfgrep/shelfgrep/internal/epub"
	"github.com/shelfgrep/shelfgrep/internal/storage"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// DefaultWorkers is the embedding worker pool size.
const DefaultWorkers = 4

// ErrIngestInProgress is returned when an ingestion run is started while
// another is already running on the same Ingester.
var ErrIngestInProgress = errors.New("ingestion already in progress")

// Ingester coordinates the ingestion pipeline: read -> chunk -> store -> embed
type Ingester struct {
	store    storage.Store
	chunker  *chunker.Chunker
	embedder embedder.Embedder

	workers int
	lock    IngestLock
}

// Config contains configuration for the ingester
type Config struct {
	Workers       int // Number of concurrent embedding workers (default: 4)
	MaxChunkChars int // Chapter split threshold; zero means the chunker default
}

// Result reports what a single ingestion run did.
type Result struct {
	Outcome        types.IngestOutcome
	Book           *types.Book
	ChunksCreated  int
	ChunksEmbedded int
	ChunksPending  int // chunks left without a vector after the embed pass
	Duration       time.Duration
	Err            error
}

// New creates a new Ingester. A nil embedder is allowed: chunks are
// stored without vectors and picked up later by EmbedPending.
func New(store storage.Store, emb embedder.Embedder, config *Config) *Ingester {
	workers := DefaultWorkers
	var chunkOpts []chunker.Option
	if config != nil {
		if config.Workers > 0 {
			workers = config.Workers
		}
		if config.MaxChunkChars > 0 {
			chunkOpts = append(chunkOpts, chunker.WithMaxChunkChars(config.MaxChunkChars))
		}
	}
	return &Ingester{
		store:    store,
		chunker:  chunker.New(chunkOpts...),
		embedder: emb,
		workers:  workers,
	}
}

// IngestFile runs the full pipeline for one EPUB file. A duplicate
// source is a no-op; a storage failure rolls back everything including
// the book row; embedding failures degrade the result but never fail it.
func (ing *Ingester) IngestFile(ctx context.Context, filePath string) (*Result, error) {
	if !ing.lock.TryAcquire() {
		return nil, ErrIngestInProgress
	}
	defer ing.lock.Release()

	start := time.Now()
	result := &Result{Outcome: types.OutcomeFailed}

	book, chapters, err := epub.Read(filePath)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", filePath, err)
		result.Duration = time.Since(start)
		return result, result.Err
	}
	result.Book = book

	// Duplicate detection before any chunk work
	srcPath, title := book.SourceKey()
	existing, err := ing.store.GetBookBySource(ctx, srcPath, title)
	if err == nil {
		result.Outcome = types.OutcomeDuplicate
		result.Book = existing
		result.Duration = time.Since(start)
		log.Printf("skipping %q: already ingested as %s", book.Title, existing.ID)
		return result, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		result.Err = fmt.Errorf("duplicate check for %s: %w", filePath, err)
		result.Duration = time.Since(start)
		return result, result.Err
	}

	book.ID = uuid.NewString()
	book.ProcessedAt = time.Now()

	chunks := ing.chunker.ChunkBook(book, chapters)
	if len(chunks) == 0 {
		result.Err = fmt.Errorf("%w: no usable text in %s", types.ErrChunkingFailure, filePath)
		result.Duration = time.Since(start)
		return result, result.Err
	}

	if err := ing.storeBook(ctx, book, chunks); err != nil {
		if errors.Is(err, types.ErrDuplicateSource) {
			result.Outcome = types.OutcomeDuplicate
			result.Duration = time.Since(start)
			return result, nil
		}
		result.Err = err
		result.Duration = time.Since(start)
		return result, result.Err
	}
	result.Outcome = types.OutcomeInserted
	result.ChunksCreated = len(chunks)

	embedded, failed := ing.embedChunks(ctx, chunks)
	result.ChunksEmbedded = embedded
	result.ChunksPending = failed

	result.Duration = time.Since(start)
	log.Printf("ingested %q: %d chunks, %d embedded, %d pending (%s)",
		book.Title, result.ChunksCreated, embedded, failed, result.Duration.Round(time.Millisecond))
	return result, nil
}

// storeBook inserts the book and its chunk set in one transaction, so a
// failure anywhere leaves no orphan book behind.
func (ing *Ingester) storeBook(ctx context.Context, book *types.Book, chunks []*types.Chunk) error {
	tx, err := ing.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.InsertBook(ctx, book); err != nil {
		return err
	}
	if err := tx.InsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks for %q: %w", book.Title, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// embedChunks generates and stores vectors for the given chunks with a
// bounded worker pool. A failed chunk is left without an embeddings row
// and reported, never propagated: one bad chunk must not sink the book.
func (ing *Ingester) embedChunks(ctx context.Context, chunks []*types.Chunk) (embedded, failed int) {
	if ing.embedder == nil {
		return 0, len(chunks)
	}

	var okCount, failCount int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)

	for _, chunk := range chunks {
		g.Go(func() error {
			emb, err := ing.embedder.GenerateEmbedding(gctx, embedder.EmbeddingRequest{Text: chunk.Content})
			if err != nil {
				atomic.AddInt32(&failCount, 1)
				log.Printf("embedding chunk %s failed: %v", chunk.ID, err)
				return nil
			}

			err = ing.store.UpsertEmbedding(gctx, &storage.Embedding{
				ChunkID:   chunk.ID,
				Vector:    storage.SerializeVector(emb.Vector),
				Dimension: emb.Dimension,
				Provider:  emb.Provider,
				Model:     emb.Model,
			})
			if err != nil {
				atomic.AddInt32(&failCount, 1)
				log.Printf("storing embedding for chunk %s failed: %v", chunk.ID, err)
				return nil
			}

			atomic.AddInt32(&okCount, 1)
			return nil
		})
	}

	_ = g.Wait()
	return int(okCount), int(failCount)
}

// EmbedPending re-runs the embedding pass over chunks that have no
// stored vector. A non-positive limit processes all of them.
func (ing *Ingester) EmbedPending(ctx context.Context, limit int) (embedded, failed int, err error) {
	if ing.embedder == nil {
		return 0, 0, embedder.ErrUnavailable
	}

	chunks, err := ing.store.ListChunksMissingEmbedding(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("listing pending chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	embedded, failed = ing.embedChunks(ctx, chunks)
	log.Printf("embed pass: %d embedded, %d still pending", embedded, failed)
	return embedded, failed, nil
}
