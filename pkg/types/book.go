package types

import (
	"errors"
	"time"
)

// Book represents one ingested source document (a single EPUB file).
type Book struct {
	// Identification
	ID string // UUID assigned at ingestion time

	// Bibliographic metadata from the EPUB package document
	Title       string
	Author      string
	Publisher   string
	Published   string // publication date as found in the source, often just a year
	Language    string
	ISBN        string
	Description string
	Genre       string

	// Derived statistics
	TotalWords int

	// Provenance
	FilePath    string // source file the book was ingested from
	ProcessedAt time.Time
}

// SourceKey returns the duplicate-detection key for the book.
// Two ingestion runs over the same (file path, title) pair refer to the
// same logical book.
func (b *Book) SourceKey() (string, string) {
	return b.FilePath, b.Title
}

// Validate checks that the book carries the fields ingestion requires.
func (b *Book) Validate() error {
	if b.Title == "" {
		return errors.New("book title cannot be empty")
	}
	if b.FilePath == "" {
		return errors.New("book file path cannot be empty")
	}
	return nil
}

// IngestOutcome reports what happened to a single book during ingestion.
type IngestOutcome string

const (
	// OutcomeInserted means the book and its chunk set were stored.
	OutcomeInserted IngestOutcome = "inserted"
	// OutcomeDuplicate means the (file_path, title) pair was already
	// ingested and the run was a no-op.
	OutcomeDuplicate IngestOutcome = "duplicate-skipped"
	// OutcomeFailed means the book could not be stored; any partial
	// state was rolled back.
	OutcomeFailed IngestOutcome = "failed"
)
