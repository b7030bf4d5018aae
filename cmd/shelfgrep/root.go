package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/config"
	"github.com/shelfgrep/shelfgrep/internal/embedder"
	"github.com/shelfgrep/shelfgrep/internal/ingester"
	"github.com/shelfgrep/shelfgrep/internal/searcher"
	"github.com/shelfgrep/shelfgrep/internal/storage"
)

var (
	configDir string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shelfgrep",
	Short: "Search your personal EPUB library",
	Long: `Shelfgrep ingests EPUB books into a local SQLite library and
searches them two ways at once: full-text keyword search and semantic
search over embedding vectors. Results come back with citations and
navigation so you can keep reading from any hit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configDir)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.shelfgrep)")
}

// app bundles the wired components a command needs.
type app struct {
	store    storage.Store
	ingester *ingester.Ingester
	searcher *searcher.Searcher
}

// openApp opens the library database and wires the pipeline. A failed
// embedder setup disables semantic search instead of aborting.
func openApp() (*app, func(), error) {
	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open library at %s: %w", cfg.Database.Path, err)
	}

	emb, err := embedder.New(cfg.EmbedderConfig())
	if err != nil {
		log.Printf("embedder unavailable, semantic search disabled: %v", err)
		emb = nil
	}

	a := &app{
		store:    store,
		ingester: ingester.New(store, emb, &ingester.Config{
			Workers:       cfg.Ingest.Workers,
			MaxChunkChars: cfg.Ingest.MaxChunkChars,
		}),
		searcher: searcher.New(store, emb),
	}
	cleanup := func() {
		if emb != nil {
			_ = emb.Close()
		}
		_ = store.Close()
	}
	return a, cleanup, nil
}
