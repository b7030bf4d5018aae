// Package chunker decomposes a book's parsed chapter structure into an
// ordered sequence of addressable chunks with deterministic IDs.
package chunker

import (
	"log"
	"strings"

	"github.com/shelfgrep/shelfgrep/internal/epub"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

const (
	// DefaultMaxChunkChars is the size above which a chapter is split
	// into paragraph chunks, keeping embedding inputs within the
	// model's input budget.
	DefaultMaxChunkChars = 6000
)

// Chunker turns chapters into chunk records. The zero value is not
// usable; construct with New.
type Chunker struct {
	maxChunkChars int
	splitLarge    bool
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxChunkChars sets the chapter size threshold for paragraph
// splitting.
func WithMaxChunkChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChunkChars = n
		}
	}
}

// WithParagraphSplit enables or disables the finer paragraph-level
// split for oversized chapters.
func WithParagraphSplit(enabled bool) Option {
	return func(c *Chunker) {
		c.splitLarge = enabled
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChunkChars: DefaultMaxChunkChars,
		splitLarge:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkBook produces the ordered chunk list for a book. Chapters must
// already be in document order (spine order). Empty chapters are
// dropped; a chapter that produces no usable text is logged and skipped
// without aborting the rest of the book.
//
// Chunk IDs are {book_id}_{0001}, {book_id}_{0002}, ... over a single
// running ordinal, so re-running the chunker over the same input yields
// identical IDs.
func (c *Chunker) ChunkBook(book *types.Book, chapters []epub.Chapter) []*types.Chunk {
	chunks := make([]*types.Chunk, 0, len(chapters))
	ordinal := 0

	for i, ch := range chapters {
		content := strings.TrimSpace(ch.Content)
		if content == "" {
			log.Printf("chunker: chapter %d (%q) of %q is empty, skipping", i+1, ch.Title, book.Title)
			continue
		}

		chapterNum := len(chaptersOnly(chunks)) + 1

		if c.splitLarge && len(content) > c.maxChunkChars {
			split := c.splitChapter(book.ID, ch.Title, content, chapterNum, &ordinal)
			if len(split) == 0 {
				log.Printf("chunker: chapter %d (%q) of %q produced no chunks, skipping", i+1, ch.Title, book.Title)
				continue
			}
			chunks = append(chunks, split...)
			continue
		}

		ordinal++
		chunk := &types.Chunk{
			ID:            types.ChunkID(book.ID, ordinal),
			BookID:        book.ID,
			Type:          types.ChunkChapter,
			Title:         ch.Title,
			Content:       content,
			ChapterNumber: chapterNum,
			ParentID:      &book.ID,
			StartPos:      0,
			EndPos:        len(content),
		}
		chunk.ComputeCounts()
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitChapter breaks an oversized chapter into paragraph chunks on
// blank-line boundaries, greedily packing paragraphs up to the size
// threshold. The chapter itself is represented by its first chunk
// carrying the chapter title.
func (c *Chunker) splitChapter(bookID, title, content string, chapterNum int, ordinal *int) []*types.Chunk {
	paragraphs := strings.Split(content, "\n\n")

	// Greedy packing: consecutive paragraphs share a chunk until the
	// next one would push it past the threshold.
	var pieces []piece
	var cur strings.Builder
	curStart := 0
	pos := 0
	for _, p := range paragraphs {
		trimmed := strings.TrimSpace(p)
		start := strings.Index(content[pos:], p)
		if start >= 0 {
			start += pos
			pos = start + len(p)
		} else {
			start = pos
		}
		if trimmed == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(trimmed)+2 > c.maxChunkChars {
			pieces = append(pieces, piece{text: cur.String(), start: curStart})
			cur.Reset()
		}
		if cur.Len() == 0 {
			curStart = start
		} else {
			cur.WriteString("\n\n")
		}
		cur.WriteString(trimmed)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, piece{text: cur.String(), start: curStart})
	}

	chunks := make([]*types.Chunk, 0, len(pieces))
	var chapterChunkID string
	for i, pc := range pieces {
		*ordinal++
		id := types.ChunkID(bookID, *ordinal)

		chunk := &types.Chunk{
			ID:              id,
			BookID:          bookID,
			Type:            types.ChunkParagraph,
			Content:         pc.text,
			ChapterNumber:   chapterNum,
			SectionNumber:   1,
			ParagraphNumber: i + 1,
			StartPos:        pc.start,
			EndPos:          pc.start + len(pc.text),
		}

		if i == 0 {
			// The first piece stands in for the chapter in outlines.
			chunk.Type = types.ChunkChapter
			chunk.Title = title
			chunk.SectionNumber = 0
			chunk.ParagraphNumber = 0
			chunk.ParentID = &bookID
			chapterChunkID = id
		} else {
			parent := chapterChunkID
			chunk.ParentID = &parent
		}

		chunk.ComputeCounts()
		chunks = append(chunks, chunk)
	}

	return chunks
}

type piece struct {
	text  string
	start int
}

// chaptersOnly filters the chapter-level chunks from a chunk list.
func chaptersOnly(chunks []*types.Chunk) []*types.Chunk {
	out := make([]*types.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Type == types.ChunkChapter {
			out = append(out, ch)
		}
	}
	return out
}
