package main

import (
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the books in the library",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	books, err := app.store.ListBooks(cmd.Context())
	if err != nil {
		return err
	}

	if listJSON {
		return printJSON(cmd, books)
	}
	if len(books) == 0 {
		cmd.Println("Library is empty. Ingest a book with: shelfgrep ingest <epub>")
		return nil
	}
	for _, b := range books {
		cmd.Printf("  %s — %s", b.Title, b.Author)
		if b.Genre != "" {
			cmd.Printf(" [%s]", b.Genre)
		}
		cmd.Printf("  (%d words, id %s)\n", b.TotalWords, b.ID)
	}
	return nil
}
