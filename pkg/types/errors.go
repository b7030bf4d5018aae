package types

import "errors"

// Domain errors shared across the ingestion and search pipelines.
var (
	// ErrDuplicateSource signals that a (file_path, title) pair was
	// already ingested. It is a no-op outcome, not a failure.
	ErrDuplicateSource = errors.New("book already ingested")

	// ErrChunkingFailure signals that a chapter could not be parsed
	// into chunks. The chapter is skipped; ingestion continues.
	ErrChunkingFailure = errors.New("chapter could not be chunked")

	// ErrEmbeddingUnavailable signals that the embedding model was
	// unreachable or timed out. The chunk keeps a null embedding and
	// stays eligible for a later retry pass.
	ErrEmbeddingUnavailable = errors.New("embedding model unavailable")

	// Validation errors
	ErrInvalidChunkID = errors.New("invalid chunk ID")
	ErrEmptyContent   = errors.New("content cannot be empty")
)
