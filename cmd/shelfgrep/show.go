package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/storage"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <chunk_id>",
	Short: "Show a chunk with its reading context",
	Long: `Prints a chunk's full text with its citation and links to the
previous and next chunks, plus the book's chapter outline.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	rc, err := app.searcher.GetReadingContext(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("chunk %s not found", args[0])
		}
		return err
	}

	if showJSON {
		return printJSON(cmd, rc)
	}

	cmd.Println(rc.Citation)
	cmd.Println()
	cmd.Println(rc.Chunk.Content)
	cmd.Println()
	if rc.Navigation.PrevChunkID != nil {
		cmd.Printf("prev: %s\n", *rc.Navigation.PrevChunkID)
	}
	if rc.Navigation.NextChunkID != nil {
		cmd.Printf("next: %s\n", *rc.Navigation.NextChunkID)
	}
	if len(rc.Navigation.Outline) > 0 {
		cmd.Println("\nOutline:")
		for _, entry := range rc.Navigation.Outline {
			marker := " "
			if entry.ChunkID == rc.Chunk.ID {
				marker = ">"
			}
			cmd.Printf("  %s Chapter %d: %s\n", marker, entry.ChapterNumber, entry.Title)
		}
	}
	return nil
}
