package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/shelfgrep/shelfgrep/internal/config"
	"github.com/shelfgrep/shelfgrep/internal/embedder"
	"github.com/shelfgrep/shelfgrep/internal/ingester"
	"github.com/shelfgrep/shelfgrep/internal/searcher"
	"github.com/shelfgrep/shelfgrep/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "shelfgrep"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	store    storage.Store
	ingester *ingester.Ingester
	searcher *searcher.Searcher
	cfg      *config.Config
}

// NewServer creates a new MCP server instance. A failed embedder setup
// degrades to lexical-only operation rather than refusing to start.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emb, err := embedder.New(cfg.EmbedderConfig())
	if err != nil {
		log.Printf("embedder unavailable, semantic search disabled: %v", err)
		emb = nil
	}

	ing := ingester.New(store, emb, &ingester.Config{
		Workers:       cfg.Ingest.Workers,
		MaxChunkChars: cfg.Ingest.MaxChunkChars,
	})
	srch := searcher.New(store, emb)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		store:    store,
		ingester: ing,
		searcher: srch,
		cfg:      cfg,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestBookTool(), s.handleIngestBook)
	s.mcp.AddTool(searchLibraryTool(), s.handleSearchLibrary)
	s.mcp.AddTool(getReadingContextTool(), s.handleGetReadingContext)
	s.mcp.AddTool(libraryStatusTool(), s.handleLibraryStatus)
}
