package integration

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfgrep/shelfgrep/internal/chunker"
	"github.com/shelfgrep/shelfgrep/internal/epub"
	"github.com/shelfgrep/shelfgrep/internal/ingester"
	"github.com/shelfgrep/shelfgrep/internal/searcher"
	"github.com/shelfgrep/shelfgrep/internal/storage"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// writeEPUB builds a minimal EPUB on disk. chapters maps spine order to
// (title, body text).
func writeEPUB(t *testing.T, path, title, author string, chapters [][2]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w := zip.NewWriter(f)
	write := func(name, content string) {
		zf, err := w.Create(name)
		require.NoError(t, err)
		_, err = zf.Write([]byte(content))
		require.NoError(t, err)
	}

	write("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	manifest := ""
	spine := ""
	for i, ch := range chapters {
		id := fmt.Sprintf("ch%d", i+1)
		href := fmt.Sprintf("ch%d.xhtml", i+1)
		manifest += fmt.Sprintf(`<item id=%q href=%q media-type="application/xhtml+xml"/>`, id, href)
		spine += fmt.Sprintf(`<itemref idref=%q/>`, id)
		write("OEBPS/"+href, fmt.Sprintf(
			`<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>`,
			ch[0], ch[0], ch[1]))
	}

	write("OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/" version="2.0">
  <metadata>
    <dc:title>`+title+`</dc:title>
    <dc:creator>`+author+`</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>`+manifest+`</manifest>
  <spine>`+spine+`</spine>
</package>`)

	require.NoError(t, w.Close())
}

// TestLibraryLifecycle exercises the full pipeline: EPUB on disk, ingest
// with embeddings, both search surfaces, navigation, and re-ingest.
func TestLibraryLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStore(filepath.Join(dir, "library.db"))
	require.NoError(t, err)
	defer store.Close()

	emb := NewMockEmbedder(32)
	ing := ingester.New(store, emb, nil)
	srch := searcher.New(store, emb)

	mobyPath := filepath.Join(dir, "moby-dick.epub")
	writeEPUB(t, mobyPath, "Moby-Dick", "Herman Melville", [][2]string{
		{"Loomings", "Call me Ishmael. Some years ago I thought I would sail about a little and see the watery part of the world."},
		{"The Spouter-Inn", "The harpooneer was a strange sight, tattooed from head to foot."},
		{"The Chart", "Ahab pored over his charts, plotting the path of the white whale."},
	})
	waldenPath := filepath.Join(dir, "walden.epub")
	writeEPUB(t, waldenPath, "Walden", "Henry David Thoreau", [][2]string{
		{"Economy", "I went to the woods because I wished to live deliberately."},
	})

	// Ingest both books; every chunk should get a vector.
	mobyResult, err := ing.IngestFile(ctx, mobyPath)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeInserted, mobyResult.Outcome)
	assert.Equal(t, 3, mobyResult.ChunksCreated)
	assert.Equal(t, 3, mobyResult.ChunksEmbedded)
	assert.Zero(t, mobyResult.ChunksPending)

	waldenResult, err := ing.IngestFile(ctx, waldenPath)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeInserted, waldenResult.Outcome)

	// Lexical search lands on the right book with a citation.
	lexical, err := srch.Lexical(ctx, "harpooneer", 10)
	require.NoError(t, err)
	require.Len(t, lexical, 1)
	assert.Equal(t, "Moby-Dick", lexical[0].BookTitle)
	assert.Equal(t, "Moby-Dick — Chapter 2: The Spouter-Inn", lexical[0].Citation)
	assert.Contains(t, lexical[0].Preview, "harpooneer")

	// The mock embedder is deterministic, so querying with a chunk's
	// exact text yields similarity 1.0 for that chunk.
	chunks, err := store.ListChunksByBook(ctx, mobyResult.Book.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	semantic, err := srch.Semantic(ctx, chunks[2].Content, 0.9, 10)
	require.NoError(t, err)
	require.NotEmpty(t, semantic)
	assert.Equal(t, chunks[2].ID, semantic[0].ChunkID)
	assert.InDelta(t, 1.0, semantic[0].Score, 1e-3)

	// Hybrid returns both sections and attaches navigation.
	hybrid, err := srch.Hybrid(ctx, "white whale", searcher.Options{Limit: 10, Threshold: 0.0})
	require.NoError(t, err)
	assert.True(t, hybrid.Status.LexicalOK)
	assert.True(t, hybrid.Status.SemanticOK)
	assert.False(t, hybrid.Status.Degraded)
	require.NotEmpty(t, hybrid.Lexical)
	assert.Equal(t, chunks[2].ID, hybrid.Lexical[0].ChunkID)
	require.NotNil(t, hybrid.Lexical[0].Navigation)
	require.NotNil(t, hybrid.Lexical[0].Navigation.PrevChunkID)
	assert.Equal(t, chunks[1].ID, *hybrid.Lexical[0].Navigation.PrevChunkID)

	// Walk backward from the hit and keep reading.
	rc, err := srch.GetReadingContext(ctx, *hybrid.Lexical[0].Navigation.PrevChunkID)
	require.NoError(t, err)
	assert.Contains(t, rc.Chunk.Content, "tattooed")
	assert.Len(t, rc.Navigation.Outline, 3)

	// Re-ingesting the same file is a no-op.
	dup, err := ing.IngestFile(ctx, mobyPath)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeDuplicate, dup.Outcome)
	assert.Equal(t, mobyResult.Book.ID, dup.Book.ID)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.BooksCount)
	assert.Equal(t, 4, stats.ChunksCount)
	assert.Zero(t, stats.PendingEmbeddings)
}

// TestThreeChapterScenario pins down the chunking contract: a 3-chapter
// book with 50/200/80-word chapters yields exactly those word counts,
// sequential chunk IDs, and a 3-entry outline from any chunk.
func TestThreeChapterScenario(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStore(filepath.Join(dir, "library.db"))
	require.NoError(t, err)
	defer store.Close()

	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("lorem ", n))
	}
	book := &types.Book{
		ID:       uuid.NewString(),
		Title:    "Sample",
		Author:   "Anonymous",
		FilePath: "/library/sample.epub",
	}
	chapters := []epub.Chapter{
		{Title: "Intro", Content: words(50), Position: 1},
		{Title: "Middle", Content: words(200), Position: 2},
		{Title: "End", Content: words(80), Position: 3},
	}

	chunks := chunker.New().ChunkBook(book, chapters)
	require.Len(t, chunks, 3)
	for i, want := range []int{50, 200, 80} {
		assert.Equal(t, fmt.Sprintf("%s_%04d", book.ID, i+1), chunks[i].ID)
		assert.Equal(t, want, chunks[i].WordCount)
	}

	require.NoError(t, store.InsertBook(ctx, book))
	require.NoError(t, store.InsertChunks(ctx, chunks))

	for _, c := range chunks {
		neighbors, err := store.GetChunkNeighbors(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, neighbors.Outline, 3)
	}
}

// TestEmbedBacklogRecovery ingests without an embedder, then backfills
// vectors with embed-pending and verifies semantic search starts working.
func TestEmbedBacklogRecovery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStore(filepath.Join(dir, "library.db"))
	require.NoError(t, err)
	defer store.Close()

	path := filepath.Join(dir, "walden.epub")
	writeEPUB(t, path, "Walden", "Henry David Thoreau", [][2]string{
		{"Economy", "I went to the woods because I wished to live deliberately."},
		{"Solitude", "I have a great deal of company in my house, especially in the morning."},
	})

	// Embedding backend down at ingest time: chunks stored, no vectors.
	offline := ingester.New(store, nil, nil)
	result, err := offline.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunksCreated)
	assert.Zero(t, result.ChunksEmbedded)
	assert.Equal(t, 2, result.ChunksPending)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingEmbeddings)

	// Backend comes back; the backlog drains.
	emb := NewMockEmbedder(32)
	online := ingester.New(store, emb, nil)
	embedded, failed, err := online.EmbedPending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, embedded)
	assert.Zero(t, failed)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingEmbeddings)

	chunks, err := store.ListChunksByBook(ctx, result.Book.ID)
	require.NoError(t, err)
	srch := searcher.New(store, emb)
	semantic, err := srch.Semantic(ctx, chunks[0].Content, 0.9, 10)
	require.NoError(t, err)
	require.NotEmpty(t, semantic)
	assert.Equal(t, chunks[0].ID, semantic[0].ChunkID)
}
