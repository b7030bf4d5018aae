package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <epub>...",
	Short: "Ingest one or more EPUB files into the library",
	Long: `Parses each EPUB, splits it into chapter and paragraph chunks,
stores them, and generates embeddings. Books already in the library
(same file path and title) are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	var failures int
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", arg, err)
		}

		result, err := app.ingester.IngestFile(cmd.Context(), path)
		if err != nil {
			failures++
			cmd.PrintErrf("  %s: %v\n", arg, err)
			continue
		}

		switch result.Outcome {
		case types.OutcomeDuplicate:
			cmd.Printf("  %s: already in library (%s)\n", arg, result.Book.Title)
		default:
			cmd.Printf("  %s: %q by %s, %d chunks (%d embedded, %d pending) in %s\n",
				arg, result.Book.Title, result.Book.Author,
				result.ChunksCreated, result.ChunksEmbedded, result.ChunksPending,
				result.Duration.Round(10*time.Millisecond))
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}
