package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/shelfgrep/shelfgrep/internal/ingester"
	"github.com/shelfgrep/shelfgrep/internal/searcher"
	"github.com/shelfgrep/shelfgrep/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeInvalidEpub         = -32001 // Path does not point at a readable EPUB
	ErrorCodeIngestInProgress    = -32002 // Another ingestion is already running
	ErrorCodeChunkNotFound       = -32003 // Unknown chunk identifier
	ErrorCodeEmptyQuery          = -32004 // Query parameter is empty
	ErrorCodeSemanticUnavailable = -32005 // Embedding backend unreachable
)

// handleIngestBook handles the ingest_book tool invocation
func (s *Server) handleIngestBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validateEpubPath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidEpub, "invalid epub path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	result, err := s.ingester.IngestFile(ctx, path)
	if err != nil {
		if errors.Is(err, ingester.ErrIngestInProgress) {
			return nil, newMCPError(ErrorCodeIngestInProgress, "another ingestion is already running", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// New content invalidates cached search responses.
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"outcome":         string(result.Outcome),
		"chunks_created":  result.ChunksCreated,
		"chunks_embedded": result.ChunksEmbedded,
		"chunks_pending":  result.ChunksPending,
		"duration_ms":     result.Duration.Milliseconds(),
	}
	if result.Book != nil {
		response["book_id"] = result.Book.ID
		response["title"] = result.Book.Title
		response["author"] = result.Book.Author
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchLibrary handles the search_library tool invocation
func (s *Server) handleSearchLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", s.cfg.Search.Limit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	threshold := getFloatDefault(args, "threshold", s.cfg.Search.Threshold)
	if threshold < 0 || threshold > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "threshold must be between 0.0 and 1.0", map[string]interface{}{
			"param": "threshold",
			"value": threshold,
		})
	}

	mode := getStringDefault(args, "mode", "hybrid")
	switch mode {
	case "hybrid":
		resp, err := s.searcher.Hybrid(ctx, query, searcher.Options{
			Limit:     limit,
			Threshold: threshold,
			UseCache:  true,
			CacheTTL:  s.cfg.SearchCacheTTL(),
		})
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return marshalToolResult(resp)
	case "lexical":
		results, err := s.searcher.Lexical(ctx, query, limit)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return marshalToolResult(map[string]interface{}{"query": query, "results": results})
	case "semantic":
		// Semantic-only searches default to the precision threshold.
		if _, set := args["threshold"]; !set {
			threshold = searcher.ThresholdPrecise
		}
		results, err := s.searcher.Semantic(ctx, query, threshold, limit)
		if err != nil {
			return nil, newMCPError(ErrorCodeSemanticUnavailable, "semantic search unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return marshalToolResult(map[string]interface{}{"query": query, "results": results})
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid mode", map[string]interface{}{
			"param":   "mode",
			"value":   mode,
			"allowed": []string{"hybrid", "lexical", "semantic"},
		})
	}
}

// handleGetReadingContext handles the get_reading_context tool invocation
func (s *Server) handleGetReadingContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	chunkID, ok := args["chunk_id"].(string)
	if !ok || chunkID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "chunk_id parameter is required", map[string]interface{}{
			"param":  "chunk_id",
			"reason": "missing or empty",
		})
	}

	rc, err := s.searcher.GetReadingContext(ctx, chunkID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newMCPError(ErrorCodeChunkNotFound, "chunk not found", map[string]interface{}{
				"chunk_id": chunkID,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to load reading context", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return marshalToolResult(rc)
}

// handleLibraryStatus handles the library_status tool invocation
func (s *Server) handleLibraryStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to gather library statistics", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"statistics": map[string]interface{}{
			"books_count":        stats.BooksCount,
			"chunks_count":       stats.ChunksCount,
			"embeddings_count":   stats.EmbeddingsCount,
			"pending_embeddings": stats.PendingEmbeddings,
			"database_size_mb":   fmt.Sprintf("%.2f", stats.DatabaseSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  stats.Health.DatabaseAccessible,
			"embeddings_available": stats.Health.EmbeddingsAvailable,
			"fts_index_built":      stats.Health.FTSIndexBuilt,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateEpubPath checks that a path points at a readable EPUB file.
func validateEpubPath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrNotFile
	}
	if !strings.EqualFold(filepath.Ext(path), ".epub") {
		return ErrNotEpub
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// marshalToolResult serializes any value as an indented-JSON text result.
func marshalToolResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(data)), nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotFile         = errors.New("path is a directory, not an epub file")
	ErrNotEpub         = errors.New("file does not have an .epub extension")
)
