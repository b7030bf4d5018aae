package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestBookTool returns the tool definition for ingest_book
func ingestBookTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_book",
		Description: "Ingest an EPUB file into the library, making it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the EPUB file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchLibraryTool returns the tool definition for search_library
func searchLibraryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_library",
		Description: "Search the ingested library with keyword or natural-language queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (keywords or natural language)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (both sections), lexical (FTS only), or semantic (embeddings only)",
					"enum":        []string{"hybrid", "lexical", "semantic"},
					"default":     "hybrid",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results per section (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity for semantic results (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getReadingContextTool returns the tool definition for get_reading_context
func getReadingContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_reading_context",
		Description: "Fetch a chunk with its citation, neighbors, and book outline for continued reading",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chunk_id": map[string]interface{}{
					"type":        "string",
					"description": "Chunk identifier as returned by search_library",
				},
			},
			Required: []string{"chunk_id"},
		},
	}
}

// libraryStatusTool returns the tool definition for library_status
func libraryStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "library_status",
		Description: "Report library statistics and health (books, chunks, embeddings, pending work)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
