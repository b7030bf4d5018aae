package searcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfgrep/shelfgrep/internal/embedder"
	"github.com/shelfgrep/shelfgrep/internal/storage"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// stubEmbedder returns a fixed vector for every request, or a fixed
// error when err is set.
type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &embedder.Embedding{
		Vector:    s.vec,
		Dimension: len(s.vec),
		Provider:  "stub",
		Model:     "stub-model",
	}, nil
}

func (s *stubEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	resp := &embedder.BatchEmbeddingResponse{Provider: "stub", Model: "stub-model"}
	for range req.Texts {
		emb, err := s.GenerateEmbedding(ctx, embedder.EmbeddingRequest{})
		if err != nil {
			return nil, err
		}
		resp.Embeddings = append(resp.Embeddings, emb)
	}
	return resp, nil
}

func (s *stubEmbedder) Dimension() int   { return len(s.vec) }
func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub-model" }
func (s *stubEmbedder) Close() error     { return nil }

// seedLibrary inserts one book with three chapter chunks and embeddings
// pointing in known directions, so semantic ordering is predictable.
func seedLibrary(t *testing.T, store storage.Store) (*types.Book, []*types.Chunk) {
	t.Helper()
	ctx := context.Background()

	book := &types.Book{
		ID:       uuid.NewString(),
		Title:    "Moby-Dick",
		Author:   "Herman Melville",
		FilePath: "/library/moby-dick.epub",
	}
	require.NoError(t, store.InsertBook(ctx, book))

	contents := []struct {
		title   string
		content string
		vec     []float32
	}{
		{"Loomings", "Call me Ishmael. Some years ago, never mind how long precisely, I thought I would sail about a little.", []float32{1, 0, 0}},
		{"The Spouter-Inn", "The white whale haunted his dreams, an obsession that would not let go.", []float32{0.9, 0.1, 0}},
		{"The Chart", "Steering a course by chart and quadrant across the trackless ocean.", []float32{0, 1, 0}},
	}

	chunks := make([]*types.Chunk, 0, len(contents))
	for i, c := range contents {
		chunk := &types.Chunk{
			ID:            types.ChunkID(book.ID, i+1),
			BookID:        book.ID,
			Type:          types.ChunkChapter,
			Title:         c.title,
			Content:       c.content,
			ChapterNumber: i + 1,
			ParentID:      &book.ID,
		}
		chunk.ComputeCounts()
		chunks = append(chunks, chunk)
	}
	require.NoError(t, store.InsertChunks(ctx, chunks))

	for i, c := range contents {
		require.NoError(t, store.UpsertEmbedding(ctx, &storage.Embedding{
			ChunkID:   chunks[i].ID,
			Vector:    storage.SerializeVector(c.vec),
			Dimension: len(c.vec),
			Provider:  "stub",
			Model:     "stub-model",
		}))
	}
	return book, chunks
}

func setupSearcher(t *testing.T, emb embedder.Embedder) (*Searcher, storage.Store, *types.Book, []*types.Chunk) {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	book, chunks := seedLibrary(t, store)
	return New(store, emb), store, book, chunks
}

func TestLexical(t *testing.T) {
	s, _, book, chunks := setupSearcher(t, nil)
	ctx := context.Background()

	results, err := s.Lexical(ctx, "white whale", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, chunks[1].ID, got.ChunkID)
	assert.Equal(t, book.ID, got.BookID)
	assert.Equal(t, 1, got.Rank)
	assert.Equal(t, "Moby-Dick", got.BookTitle)
	assert.Equal(t, "Herman Melville", got.BookAuthor)
	assert.Equal(t, "Moby-Dick — Chapter 2: The Spouter-Inn", got.Citation)
	assert.Contains(t, got.Preview, "white whale")
	assert.Contains(t, got.Explanation, "text match")
	assert.Greater(t, got.Score, 0.0)
	assert.LessOrEqual(t, got.Score, 1.0)
}

func TestLexical_EmptyQuery(t *testing.T) {
	s, _, _, _ := setupSearcher(t, nil)

	_, err := s.Lexical(context.Background(), "   ", 10)
	assert.Error(t, err)
}

func TestLexical_NoMatches(t *testing.T) {
	s, _, _, _ := setupSearcher(t, nil)

	results, err := s.Lexical(context.Background(), "submarine", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSemantic(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s, _, _, chunks := setupSearcher(t, emb)

	results, err := s.Semantic(context.Background(), "seafaring wanderlust", 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ordered by similarity, the aligned vector first.
	assert.Equal(t, chunks[0].ID, results[0].ChunkID)
	assert.Equal(t, chunks[1].ID, results[1].ChunkID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Contains(t, results[0].Explanation, "conceptually related")
}

func TestSemantic_ThresholdFilters(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s, _, _, _ := setupSearcher(t, emb)

	results, err := s.Semantic(context.Background(), "seafaring", 0.99, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSemantic_EmbedderUnavailable(t *testing.T) {
	emb := &stubEmbedder{err: embedder.ErrUnavailable}
	s, _, _, _ := setupSearcher(t, emb)

	_, err := s.Semantic(context.Background(), "whales", 0.1, 10)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
}

func TestSemantic_NilEmbedder(t *testing.T) {
	s, _, _, _ := setupSearcher(t, nil)

	_, err := s.Semantic(context.Background(), "whales", 0.1, 10)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
}

func TestHybrid(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.9, 0.1, 0}}
	s, _, _, chunks := setupSearcher(t, emb)

	resp, err := s.Hybrid(context.Background(), "whale", Options{Limit: 10, Threshold: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "whale", resp.Query)
	assert.True(t, resp.Status.LexicalOK)
	assert.True(t, resp.Status.SemanticOK)
	assert.False(t, resp.Status.Degraded)

	require.Len(t, resp.Lexical, 1)
	assert.Equal(t, chunks[1].ID, resp.Lexical[0].ChunkID)

	// The same chunk appears in both sections; they are not merged.
	require.NotEmpty(t, resp.Semantic)
	assert.Equal(t, chunks[1].ID, resp.Semantic[0].ChunkID)
}

func TestHybrid_AttachesNavigation(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.9, 0.1, 0}}
	s, _, _, chunks := setupSearcher(t, emb)

	resp, err := s.Hybrid(context.Background(), "whale", Options{Limit: 10, Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, resp.Lexical, 1)

	nav := resp.Lexical[0].Navigation
	require.NotNil(t, nav)
	require.NotNil(t, nav.PrevChunkID)
	require.NotNil(t, nav.NextChunkID)
	assert.Equal(t, chunks[0].ID, *nav.PrevChunkID)
	assert.Equal(t, chunks[2].ID, *nav.NextChunkID)
	assert.Len(t, nav.Outline, 3)
}

func TestHybrid_DegradedSemantic(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("connection refused")}
	s, _, _, _ := setupSearcher(t, emb)

	resp, err := s.Hybrid(context.Background(), "whale", Options{Limit: 10})
	require.NoError(t, err)

	assert.True(t, resp.Status.LexicalOK)
	assert.False(t, resp.Status.SemanticOK)
	assert.True(t, resp.Status.Degraded)
	assert.Contains(t, resp.Status.Message, "semantic search failed")
	assert.NotEmpty(t, resp.Lexical)
	assert.Empty(t, resp.Semantic)
	assert.NotNil(t, resp.Semantic)
}

func TestHybrid_CacheAvoidsRecompute(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s, _, _, _ := setupSearcher(t, emb)
	ctx := context.Background()
	opts := Options{Limit: 10, Threshold: 0.5, UseCache: true}

	first, err := s.Hybrid(ctx, "whale", opts)
	require.NoError(t, err)
	require.Equal(t, 1, emb.calls)

	second, err := s.Hybrid(ctx, "whale", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls, "cached response should not re-embed the query")
	assert.Equal(t, first.Lexical, second.Lexical)
	assert.Equal(t, first.Semantic, second.Semantic)

	// Different options miss the cache.
	opts.Threshold = 0.9
	_, err = s.Hybrid(ctx, "whale", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestHybrid_InvalidateCache(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s, _, _, _ := setupSearcher(t, emb)
	ctx := context.Background()
	opts := Options{Limit: 10, Threshold: 0.5, UseCache: true}

	_, err := s.Hybrid(ctx, "whale", opts)
	require.NoError(t, err)

	s.InvalidateCache()

	_, err = s.Hybrid(ctx, "whale", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestHybrid_CachedCopyIsIsolated(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s, _, _, _ := setupSearcher(t, emb)
	ctx := context.Background()
	opts := Options{Limit: 10, Threshold: 0.5, UseCache: true}

	first, err := s.Hybrid(ctx, "Ishmael", opts)
	require.NoError(t, err)
	require.NotEmpty(t, first.Lexical)
	first.Lexical[0].Preview = "mutated"

	second, err := s.Hybrid(ctx, "Ishmael", opts)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second.Lexical[0].Preview)
}

func TestGetReadingContext(t *testing.T) {
	s, _, book, chunks := setupSearcher(t, nil)

	rc, err := s.GetReadingContext(context.Background(), chunks[1].ID)
	require.NoError(t, err)

	assert.Equal(t, chunks[1].ID, rc.Chunk.ID)
	assert.Equal(t, book.Title, rc.BookTitle)
	assert.Equal(t, "Herman Melville", rc.BookAuthor)
	assert.Equal(t, "Moby-Dick — Chapter 2: The Spouter-Inn", rc.Citation)
	require.NotNil(t, rc.Navigation.PrevChunkID)
	require.NotNil(t, rc.Navigation.NextChunkID)
	assert.Equal(t, chunks[0].ID, *rc.Navigation.PrevChunkID)
	assert.Equal(t, chunks[2].ID, *rc.Navigation.NextChunkID)
	assert.Len(t, rc.Navigation.Outline, 3)
}

func TestGetReadingContext_FirstChunk(t *testing.T) {
	s, _, _, chunks := setupSearcher(t, nil)

	rc, err := s.GetReadingContext(context.Background(), chunks[0].ID)
	require.NoError(t, err)
	assert.Nil(t, rc.Navigation.PrevChunkID)
	require.NotNil(t, rc.Navigation.NextChunkID)
	assert.Equal(t, chunks[1].ID, *rc.Navigation.NextChunkID)
}

func TestGetReadingContext_NotFound(t *testing.T) {
	s, _, _, _ := setupSearcher(t, nil)

	_, err := s.GetReadingContext(context.Background(), "no-such-chunk_0001")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBuildExcerpt(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		assert.Equal(t, "Call me Ishmael.", buildExcerpt("Call me Ishmael.", "Ishmael", 240))
	})

	t.Run("window centered on match", func(t *testing.T) {
		content := strings.Repeat("water ", 100) + "HARPOON sighted " + strings.Repeat("water ", 100)
		got := buildExcerpt(content, "harpoon", 120)
		assert.Contains(t, got, "HARPOON")
		assert.True(t, strings.HasPrefix(got, ellipsis))
		assert.True(t, strings.HasSuffix(got, ellipsis))
		assert.LessOrEqual(t, len(got), 120+2*len(ellipsis))
	})

	t.Run("no match takes leading window", func(t *testing.T) {
		content := strings.Repeat("ocean ", 100)
		got := buildExcerpt(content, "mountain peak", 60)
		assert.True(t, strings.HasPrefix(got, "ocean"))
		assert.True(t, strings.HasSuffix(got, ellipsis))
	})

	t.Run("empty query takes leading window", func(t *testing.T) {
		content := strings.Repeat("drift ", 100)
		got := buildExcerpt(content, "", 60)
		assert.True(t, strings.HasPrefix(got, "drift"))
	})
}

func TestBuildCitation(t *testing.T) {
	bookID := uuid.NewString()
	chapter := &types.Chunk{
		Type:          types.ChunkChapter,
		Title:         "The Chart",
		ChapterNumber: 3,
		ParentID:      &bookID,
	}
	assert.Equal(t, "Moby-Dick — Chapter 3: The Chart", buildCitation("Moby-Dick", chapter))

	paragraph := &types.Chunk{
		Type:            types.ChunkParagraph,
		ChapterNumber:   3,
		ParagraphNumber: 2,
		ParentID:        &bookID,
	}
	assert.Equal(t, "Moby-Dick — Chapter 3, paragraph 2", buildCitation("Moby-Dick", paragraph))

	assert.Equal(t, "Chapter 3: The Chart", buildCitation("", chapter))
}
