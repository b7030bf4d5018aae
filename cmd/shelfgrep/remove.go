package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/storage"
)

var removeCmd = &cobra.Command{
	Use:   "remove <book_id>",
	Short: "Remove a book and all its chunks from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	book, err := app.store.GetBook(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("book %s not found (use 'shelfgrep list' to see ids)", args[0])
		}
		return err
	}

	if err := app.store.DeleteBook(cmd.Context(), book.ID); err != nil {
		return err
	}
	cmd.Printf("removed %q by %s\n", book.Title, book.Author)
	return nil
}
