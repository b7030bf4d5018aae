package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfgrep/shelfgrep/internal/epub"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func testBook() *types.Book {
	return &types.Book{ID: "b1", Title: "Test Book", FilePath: "/lib/test.epub"}
}

func TestChunkBook_OneChunkPerChapter(t *testing.T) {
	c := New()
	chapters := []epub.Chapter{
		{Title: "Intro", Content: words(50), Position: 0},
		{Title: "Middle", Content: words(200), Position: 1},
		{Title: "End", Content: words(80), Position: 2},
	}

	chunks := c.ChunkBook(testBook(), chapters)
	require.Len(t, chunks, 3)

	assert.Equal(t, "b1_0001", chunks[0].ID)
	assert.Equal(t, "b1_0002", chunks[1].ID)
	assert.Equal(t, "b1_0003", chunks[2].ID)

	assert.Equal(t, 50, chunks[0].WordCount)
	assert.Equal(t, 200, chunks[1].WordCount)
	assert.Equal(t, 80, chunks[2].WordCount)

	for i, ch := range chunks {
		assert.Equal(t, types.ChunkChapter, ch.Type)
		assert.Equal(t, i+1, ch.ChapterNumber)
		assert.Equal(t, 0, ch.SectionNumber)
		require.NotNil(t, ch.ParentID)
		assert.Equal(t, "b1", *ch.ParentID)
		assert.NoError(t, ch.Validate())
	}
}

func TestChunkBook_Deterministic(t *testing.T) {
	c := New()
	chapters := []epub.Chapter{
		{Title: "A", Content: words(30)},
		{Title: "B", Content: words(40)},
	}

	first := c.ChunkBook(testBook(), chapters)
	second := c.ChunkBook(testBook(), chapters)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestChunkBook_DropsEmptyChapter(t *testing.T) {
	c := New()
	chapters := []epub.Chapter{
		{Title: "Real", Content: words(10)},
		{Title: "Blank", Content: "   \n  "},
		{Title: "Also Real", Content: words(12)},
	}

	chunks := c.ChunkBook(testBook(), chapters)
	require.Len(t, chunks, 2)

	// The ordinal keeps running without gaps and chapter numbers stay
	// contiguous.
	assert.Equal(t, "b1_0001", chunks[0].ID)
	assert.Equal(t, "b1_0002", chunks[1].ID)
	assert.Equal(t, 1, chunks[0].ChapterNumber)
	assert.Equal(t, 2, chunks[1].ChapterNumber)
}

func TestChunkBook_SplitsOversizedChapter(t *testing.T) {
	c := New(WithMaxChunkChars(200))

	paras := []string{words(20), words(20), words(20), words(20)}
	chapters := []epub.Chapter{
		{Title: "Big", Content: strings.Join(paras, "\n\n")},
	}

	chunks := c.ChunkBook(testBook(), chapters)
	require.Greater(t, len(chunks), 1)

	// First piece represents the chapter in outlines.
	assert.Equal(t, types.ChunkChapter, chunks[0].Type)
	assert.Equal(t, "Big", chunks[0].Title)
	assert.Equal(t, 0, chunks[0].ParagraphNumber)

	// Remaining pieces are paragraph chunks parented to the chapter
	// chunk and strictly ordered.
	for i, ch := range chunks[1:] {
		assert.Equal(t, types.ChunkParagraph, ch.Type)
		assert.Equal(t, 1, ch.ChapterNumber)
		assert.Equal(t, 1, ch.SectionNumber)
		assert.Equal(t, i+1, ch.ParagraphNumber)
		require.NotNil(t, ch.ParentID)
		assert.Equal(t, chunks[0].ID, *ch.ParentID)
	}

	// No piece exceeds the threshold.
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.CharCount, 200)
	}
}

func TestChunkBook_SplitDisabled(t *testing.T) {
	c := New(WithMaxChunkChars(50), WithParagraphSplit(false))
	chapters := []epub.Chapter{
		{Title: "Big", Content: words(100)},
	}

	chunks := c.ChunkBook(testBook(), chapters)
	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkChapter, chunks[0].Type)
}

func TestChunkBook_CountsAreRawLengths(t *testing.T) {
	c := New()
	content := "one  two\tthree\nfour"
	chunks := c.ChunkBook(testBook(), []epub.Chapter{{Title: "T", Content: content}})

	require.Len(t, chunks, 1)
	assert.Equal(t, 4, chunks[0].WordCount)
	assert.Equal(t, len(content), chunks[0].CharCount)
}
