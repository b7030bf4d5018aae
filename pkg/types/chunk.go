package types

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// ChunkType represents the granularity of a text chunk.
type ChunkType string

const (
	ChunkBook      ChunkType = "book"
	ChunkChapter   ChunkType = "chapter"
	ChunkSection   ChunkType = "section"
	ChunkParagraph ChunkType = "paragraph"
)

// Chunk is an addressable unit of a book's text. Chunks form a hierarchy
// (book -> chapter -> section -> paragraph) expressed through Type, the
// ordering numbers, and the optional parent back-reference.
type Chunk struct {
	// Identification. ID is deterministic: derived from the book ID and
	// the chunk's ordinal position, so re-ingesting the same book
	// produces the same IDs.
	ID      string
	BookID  string
	Type    ChunkType
	Title   string
	Content string

	// Ordering within the book. Chapter-level chunks carry section and
	// paragraph number 0; paragraph chunks of a split chapter share the
	// chapter number and count up from 1.
	ChapterNumber   int
	SectionNumber   int
	ParagraphNumber int

	// Hierarchy
	ParentID *string // nil only for the book-level root chunk

	// Position within the parent's content, in bytes.
	StartPos int
	EndPos   int

	// Statistics
	WordCount int
	CharCount int
}

// ChunkID builds the deterministic chunk identifier for a book and a
// 1-based ordinal. The 4-digit form keeps IDs sortable as strings for
// corpora up to 9999 chunks per book.
func ChunkID(bookID string, ordinal int) string {
	return fmt.Sprintf("%s_%04d", bookID, ordinal)
}

// ComputeCounts fills WordCount and CharCount from Content.
// Words are whitespace-delimited tokens; characters are raw bytes.
func (c *Chunk) ComputeCounts() {
	c.WordCount = len(strings.Fields(c.Content))
	c.CharCount = len(c.Content)
}

// ContentHash returns the SHA-256 of the chunk content, used to
// deduplicate embedding requests across chunks with identical text.
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}

// ValidateType checks the chunk type against the known granularities.
func (c *Chunk) ValidateType() error {
	switch c.Type {
	case ChunkBook, ChunkChapter, ChunkSection, ChunkParagraph:
		return nil
	default:
		return errors.New("invalid chunk type")
	}
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrInvalidChunkID
	}
	if c.BookID == "" {
		return errors.New("chunk book ID is required")
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if err := c.ValidateType(); err != nil {
		return err
	}
	if c.ChapterNumber < 0 || c.SectionNumber < 0 || c.ParagraphNumber < 0 {
		return errors.New("chunk ordering numbers must be non-negative")
	}
	if c.Type != ChunkBook && c.ParentID == nil {
		return errors.New("non-root chunk must have a parent")
	}
	return nil
}
