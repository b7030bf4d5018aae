package types

// SearchResult is a ranked chunk reference returned by lexical or
// semantic search. It is derived at query time and never persisted.
type SearchResult struct {
	// Identification
	ChunkID string `json:"chunk_id"`
	BookID  string `json:"book_id"`
	Rank    int    `json:"rank"` // position in its result set (1-based)

	// Citation
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author,omitempty"`
	ChunkTitle string `json:"chunk_title,omitempty"`
	Citation   string `json:"citation"` // "Title — Chapter 3: The Road"

	// Scoring. Lexical results carry a normalized text-relevance score,
	// semantic results a cosine similarity in [-1, 1].
	Score float64 `json:"score"`

	// Explanation is a human-readable account of why the result
	// matched, e.g. "conceptually related, similarity 0.412".
	Explanation string `json:"explanation,omitempty"`

	// Preview is a bounded excerpt of the chunk content. For lexical
	// results it is centered on the first query match, with ellipsis
	// markers where truncated.
	Preview string `json:"preview"`

	// Navigation links for hybrid responses; nil outside hybrid mode.
	Navigation *Navigation `json:"navigation,omitempty"`
}

// Navigation carries reading-order context for a chunk.
type Navigation struct {
	PrevChunkID *string        `json:"prev_chunk_id"` // nil at the start of the book
	NextChunkID *string        `json:"next_chunk_id"` // nil at the end of the book
	Outline     []OutlineEntry `json:"outline"`       // chapter-level chunks of the book
}

// OutlineEntry is one chapter in a book's outline.
type OutlineEntry struct {
	ChunkID       string `json:"chunk_id"`
	Title         string `json:"title"`
	ChapterNumber int    `json:"chapter_number"`
}

// SearchStatus distinguishes "no results" from "search subsystem down".
// Degraded is set when one of the query surfaces failed and its section
// was returned empty.
type SearchStatus struct {
	LexicalOK  bool   `json:"lexical_ok"`
	SemanticOK bool   `json:"semantic_ok"`
	Degraded   bool   `json:"degraded"`
	Message    string `json:"message,omitempty"`
}

// HybridResponse combines the two result sets for one query. The
// sections are intentionally not deduplicated or re-ranked against each
// other; they answer different questions about the same query.
type HybridResponse struct {
	Query    string         `json:"query"`
	Lexical  []SearchResult `json:"lexical"`
	Semantic []SearchResult `json:"semantic"`
	Status   SearchStatus   `json:"status"`
}
