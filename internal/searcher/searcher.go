package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shelfgrep/shelfgrep/internal/embedder"
	"github.com/shelfgrep/shelfgrep/internal/storage"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

const (
	// DefaultLimit caps a result section when the caller does not say.
	DefaultLimit = 10
	// MaxLimit is the hard cap per section.
	MaxLimit = 50

	// ThresholdBroad admits loosely related chunks; the default for
	// exploratory queries.
	ThresholdBroad = 0.1
	// ThresholdPrecise trades recall for precision.
	ThresholdPrecise = 0.2

	// DefaultCacheTTL bounds how long a cached hybrid response is served.
	DefaultCacheTTL = 1 * time.Hour

	cacheSize = 1000
)

// Options tune a hybrid search.
type Options struct {
	Limit     int
	Threshold float64 // minimum cosine similarity for the semantic section
	UseCache  bool
	CacheTTL  time.Duration
}

// cacheEntry is a cached hybrid response with its expiration time.
type cacheEntry struct {
	response  *types.HybridResponse
	expiresAt time.Time
}

// Searcher answers queries over the ingested library. The lexical and
// semantic surfaces are independent: either can degrade without taking
// the other down.
type Searcher struct {
	store    storage.Store
	embedder embedder.Embedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
}

// New creates a Searcher. A nil embedder disables the semantic surface;
// lexical search still works.
func New(store storage.Store, emb embedder.Embedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &Searcher{
		store:    store,
		embedder: emb,
		cache:    cache,
	}
}

// Lexical performs full-text search and decorates each hit with a
// citation and an excerpt centered on the first match.
func (s *Searcher) Lexical(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	limit = clampLimit(limit)

	rows, err := s.store.SearchText(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]types.SearchResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, types.SearchResult{
			ChunkID:     row.Chunk.ID,
			BookID:      row.Chunk.BookID,
			Rank:        i + 1,
			BookTitle:   row.BookTitle,
			BookAuthor:  row.BookAuthor,
			ChunkTitle:  row.Chunk.Title,
			Citation:    buildCitation(row.BookTitle, row.Chunk),
			Score:       row.Score,
			Explanation: fmt.Sprintf("text match, relevance %.3f", row.Score),
			Preview:     buildExcerpt(row.Chunk.Content, query, previewLen),
		})
	}
	return results, nil
}

// Semantic embeds the query and searches stored vectors. An unreachable
// embedding endpoint surfaces as ErrEmbeddingUnavailable so callers can
// distinguish "nothing matched" from "could not search".
func (s *Searcher) Semantic(ctx context.Context, query string, threshold float64, limit int) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if s.embedder == nil {
		return nil, types.ErrEmbeddingUnavailable
	}
	limit = clampLimit(limit)
	if threshold == 0 {
		threshold = ThresholdBroad
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingUnavailable, err)
	}

	rows, err := s.store.SearchVector(ctx, emb.Vector, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	results := make([]types.SearchResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, types.SearchResult{
			ChunkID:     row.Chunk.ID,
			BookID:      row.Chunk.BookID,
			Rank:        i + 1,
			BookTitle:   row.BookTitle,
			BookAuthor:  row.BookAuthor,
			ChunkTitle:  row.Chunk.Title,
			Citation:    buildCitation(row.BookTitle, row.Chunk),
			Score:       row.Similarity,
			Explanation: fmt.Sprintf("conceptually related, similarity %.3f", row.Similarity),
			Preview:     buildExcerpt(row.Chunk.Content, "", previewLen),
		})
	}
	return results, nil
}

// sectionResult holds one surface's outcome in a hybrid run.
type sectionResult struct {
	results []types.SearchResult
	err     error
}

// Hybrid runs both surfaces concurrently and returns their result sets
// side by side, deliberately without fusing or deduplicating them: a
// chunk that matches both ways appears in both sections. A failed
// surface yields an empty section and a degraded status, not an error.
func (s *Searcher) Hybrid(ctx context.Context, query string, opts Options) (*types.HybridResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	opts.Limit = clampLimit(opts.Limit)
	if opts.Threshold == 0 {
		opts.Threshold = ThresholdBroad
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	if opts.UseCache {
		if cached, ok := s.checkCache(query, opts); ok {
			return cached, nil
		}
	}

	lexChan := make(chan sectionResult, 1)
	semChan := make(chan sectionResult, 1)

	go func() {
		var res sectionResult
		res.results, res.err = s.Lexical(ctx, query, opts.Limit)
		select {
		case lexChan <- res:
		case <-ctx.Done():
		}
	}()
	go func() {
		var res sectionResult
		res.results, res.err = s.Semantic(ctx, query, opts.Threshold, opts.Limit)
		select {
		case semChan <- res:
		case <-ctx.Done():
		}
	}()

	var lex, sem sectionResult
	var lexDone, semDone bool
	for !lexDone || !semDone {
		select {
		case lex = <-lexChan:
			lexDone = true
		case sem = <-semChan:
			semDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	response := &types.HybridResponse{
		Query:    query,
		Lexical:  lex.results,
		Semantic: sem.results,
		Status: types.SearchStatus{
			LexicalOK:  lex.err == nil,
			SemanticOK: sem.err == nil,
		},
	}
	if lex.err != nil || sem.err != nil {
		response.Status.Degraded = true
		response.Status.Message = degradedMessage(lex.err, sem.err)
	}
	if response.Lexical == nil {
		response.Lexical = []types.SearchResult{}
	}
	if response.Semantic == nil {
		response.Semantic = []types.SearchResult{}
	}

	s.attachNavigation(ctx, response.Lexical)
	s.attachNavigation(ctx, response.Semantic)

	if opts.UseCache && !response.Status.Degraded {
		s.storeInCache(query, opts, response)
	}
	return response, nil
}

// ReadingContext is a chunk with enough surrounding material to keep
// reading: its text, citation, and document-order navigation.
type ReadingContext struct {
	Chunk      *types.Chunk     `json:"chunk"`
	BookTitle  string           `json:"book_title"`
	BookAuthor string           `json:"book_author,omitempty"`
	Citation   string           `json:"citation"`
	Navigation types.Navigation `json:"navigation"`
}

// GetReadingContext loads a chunk by ID with its neighbors and outline.
func (s *Searcher) GetReadingContext(ctx context.Context, chunkID string) (*ReadingContext, error) {
	chunk, err := s.store.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	book, err := s.store.GetBook(ctx, chunk.BookID)
	if err != nil {
		return nil, err
	}
	neighbors, err := s.store.GetChunkNeighbors(ctx, chunkID)
	if err != nil {
		return nil, err
	}

	rc := &ReadingContext{
		Chunk:      chunk,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		Citation:   buildCitation(book.Title, chunk),
		Navigation: types.Navigation{Outline: neighbors.Outline},
	}
	if neighbors.Prev != nil {
		rc.Navigation.PrevChunkID = &neighbors.Prev.ID
	}
	if neighbors.Next != nil {
		rc.Navigation.NextChunkID = &neighbors.Next.ID
	}
	return rc, nil
}

// attachNavigation decorates results with prev/next links and the book
// outline. A lookup failure leaves that result without navigation.
func (s *Searcher) attachNavigation(ctx context.Context, results []types.SearchResult) {
	for i := range results {
		neighbors, err := s.store.GetChunkNeighbors(ctx, results[i].ChunkID)
		if err != nil {
			continue
		}
		nav := &types.Navigation{Outline: neighbors.Outline}
		if neighbors.Prev != nil {
			nav.PrevChunkID = &neighbors.Prev.ID
		}
		if neighbors.Next != nil {
			nav.NextChunkID = &neighbors.Next.ID
		}
		results[i].Navigation = nav
	}
}

func degradedMessage(lexErr, semErr error) string {
	switch {
	case lexErr != nil && semErr != nil:
		return fmt.Sprintf("both surfaces failed: lexical: %v; semantic: %v", lexErr, semErr)
	case lexErr != nil:
		return fmt.Sprintf("lexical search failed: %v", lexErr)
	default:
		return fmt.Sprintf("semantic search failed: %v", semErr)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// checkCache returns a still-fresh cached response, expiring stale ones.
func (s *Searcher) checkCache(query string, opts Options) (*types.HybridResponse, bool) {
	hash := computeQueryHash(query, opts)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, false
	}
	response := copyResponse(entry.response)
	s.cacheMu.RUnlock()
	return response, true
}

func (s *Searcher) storeInCache(query string, opts Options, response *types.HybridResponse) {
	entry := &cacheEntry{
		response:  copyResponse(response),
		expiresAt: time.Now().Add(opts.CacheTTL),
	}
	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(query, opts), entry)
	s.cacheMu.Unlock()
}

// InvalidateCache drops all cached responses. Called after ingestion so
// stale result sets never outlive a library change.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// copyResponse deep-copies a hybrid response so cached entries cannot be
// mutated by callers.
func copyResponse(src *types.HybridResponse) *types.HybridResponse {
	if src == nil {
		return nil
	}
	dst := &types.HybridResponse{
		Query:    src.Query,
		Status:   src.Status,
		Lexical:  copyResults(src.Lexical),
		Semantic: copyResults(src.Semantic),
	}
	return dst
}

func copyResults(src []types.SearchResult) []types.SearchResult {
	dst := make([]types.SearchResult, len(src))
	copy(dst, src)
	for i := range dst {
		if src[i].Navigation == nil {
			continue
		}
		nav := &types.Navigation{
			Outline: append([]types.OutlineEntry(nil), src[i].Navigation.Outline...),
		}
		if src[i].Navigation.PrevChunkID != nil {
			id := *src[i].Navigation.PrevChunkID
			nav.PrevChunkID = &id
		}
		if src[i].Navigation.NextChunkID != nil {
			id := *src[i].Navigation.NextChunkID
			nav.NextChunkID = &id
		}
		dst[i].Navigation = nav
	}
	return dst
}

// computeQueryHash computes a unique hash for a query and its options
func computeQueryHash(query string, opts Options) [32]byte {
	var data strings.Builder
	data.WriteString(query)
	data.WriteString("|")
	fmt.Fprintf(&data, "%d|%.3f", opts.Limit, opts.Threshold)
	return sha256.Sum256([]byte(data.String()))
}
