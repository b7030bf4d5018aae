package main

import (
	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("shelfgrep version %s\n", version)
		cmd.Printf("build time: %s\n", buildTime)
		cmd.Printf("build mode: %s\n", storage.BuildMode)
		cmd.Printf("sqlite driver: %s\n", storage.DriverName)
		cmd.Printf("vector extension: %v\n", storage.VectorExtensionAvailable)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
