package main

import (
	"github.com/spf13/cobra"
)

var embedPendingLimit int

var embedPendingCmd = &cobra.Command{
	Use:   "embed-pending",
	Short: "Generate embeddings for chunks that do not have one yet",
	Long: `Retries embedding for chunks left without a vector, typically
after an ingest ran while the embedding backend was down.`,
	Args: cobra.NoArgs,
	RunE: runEmbedPending,
}

func init() {
	embedPendingCmd.Flags().IntVarP(&embedPendingLimit, "limit", "n", 0, "maximum chunks to embed (0 means all)")
	rootCmd.AddCommand(embedPendingCmd)
}

func runEmbedPending(cmd *cobra.Command, args []string) error {
	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	embedded, failed, err := app.ingester.EmbedPending(cmd.Context(), embedPendingLimit)
	if err != nil {
		return err
	}

	cmd.Printf("embedded %d chunks", embedded)
	if failed > 0 {
		cmd.Printf(", %d failed (run again to retry)", failed)
	}
	cmd.Println()
	return nil
}
