package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/searcher"
	"github.com/shelfgrep/shelfgrep/pkg/types"
)

var (
	searchMode      string
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the library",
	Long: `Searches the ingested library. Hybrid mode (the default) shows
keyword and semantic matches as two separate sections; lexical and
semantic modes show one.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: hybrid, lexical, or semantic")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results per section (default from config)")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity for semantic results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	app, cleanup, err := openApp()
	if err != nil {
		return err
	}
	defer cleanup()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	threshold := searchThreshold
	if threshold == 0 {
		threshold = cfg.Search.Threshold
	}

	ctx := cmd.Context()
	switch searchMode {
	case "hybrid":
		resp, err := app.searcher.Hybrid(ctx, query, searcher.Options{
			Limit:     limit,
			Threshold: threshold,
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, resp)
		}
		printHybrid(cmd, resp)
		return nil
	case "lexical":
		results, err := app.searcher.Lexical(ctx, query, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, results)
		}
		printSection(cmd, "Results", results)
		return nil
	case "semantic":
		if !cmd.Flags().Changed("threshold") {
			threshold = searcher.ThresholdPrecise
		}
		results, err := app.searcher.Semantic(ctx, query, threshold, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, results)
		}
		printSection(cmd, "Results", results)
		return nil
	default:
		return fmt.Errorf("unknown mode %q (want hybrid, lexical, or semantic)", searchMode)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printHybrid(cmd *cobra.Command, resp *types.HybridResponse) {
	printSection(cmd, "Keyword matches", resp.Lexical)
	printSection(cmd, "Semantically related", resp.Semantic)
	if resp.Status.Degraded {
		cmd.PrintErrf("warning: %s\n", resp.Status.Message)
	}
}

func printSection(cmd *cobra.Command, heading string, results []types.SearchResult) {
	cmd.Printf("%s:\n", heading)
	if len(results) == 0 {
		cmd.Println("  (none)")
		cmd.Println()
		return
	}
	for i := range results {
		r := &results[i]
		cmd.Printf("  [%d] %s (%.3f)\n", r.Rank, r.Citation, r.Score)
		cmd.Printf("      %s\n", r.Preview)
		cmd.Printf("      chunk: %s\n", r.ChunkID)
		cmd.Println()
	}
}
