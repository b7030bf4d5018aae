package searcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// previewLen bounds the excerpt shown with each search result.
const previewLen = 240

// ellipsis marks a truncated edge of an excerpt.
const ellipsis = "..."

// buildExcerpt returns a window of content at most max bytes long,
// centered on the first case-folded occurrence of the query (or of its
// first term when the full phrase is absent). Truncated edges get
// ellipsis markers. An empty query yields the leading window, which is
// what semantic results want.
func buildExcerpt(content, query string, max int) string {
	content = strings.TrimSpace(content)
	if len(content) <= max {
		return content
	}

	at := matchOffset(content, query)
	start := at - max/2
	if start < 0 {
		start = 0
	}
	end := start + max
	if end > len(content) {
		end = len(content)
		start = end - max
	}

	// Never cut a rune in half.
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	// Snap the edges outward to whitespace so the excerpt starts and
	// ends on whole words where possible.
	if start > 0 {
		if i := strings.IndexAny(content[start:end], " \t\n"); i >= 0 && i < max/4 {
			start += i + 1
		}
	}
	if end < len(content) {
		if i := strings.LastIndexAny(content[start:end], " \t\n"); i > 0 && end-start-i < max/4 {
			end = start + i
		}
	}

	excerpt := strings.TrimSpace(content[start:end])
	if start > 0 {
		excerpt = ellipsis + excerpt
	}
	if end < len(content) {
		excerpt += ellipsis
	}
	return excerpt
}

// matchOffset finds where the excerpt window should center. Falls back
// from the full phrase to the first term to the start of the content.
func matchOffset(content, query string) int {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0
	}
	folded := strings.ToLower(content)
	if at := strings.Index(folded, strings.ToLower(query)); at >= 0 {
		return at
	}
	if terms := strings.Fields(query); len(terms) > 0 {
		if at := strings.Index(folded, strings.ToLower(terms[0])); at >= 0 {
			return at
		}
	}
	return 0
}

// buildCitation renders a human-readable source reference in the form
// "Moby-Dick — Chapter 3: The Spouter-Inn".
func buildCitation(bookTitle string, chunk *types.Chunk) string {
	ref := fmt.Sprintf("Chapter %d", chunk.ChapterNumber)
	if chunk.Title != "" {
		ref += ": " + chunk.Title
	}
	if chunk.Type == types.ChunkParagraph && chunk.ParagraphNumber > 0 {
		ref = fmt.Sprintf("%s, paragraph %d", ref, chunk.ParagraphNumber)
	}
	if bookTitle == "" {
		return ref
	}
	return bookTitle + " — " + ref
}
