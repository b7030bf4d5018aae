package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfgrep/shelfgrep/internal/mcp"
	"github.com/shelfgrep/shelfgrep/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serves the library over the Model Context Protocol. All logging
goes to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Printf("shelfgrep MCP server v%s starting", mcp.ServerVersion)
	log.Printf("build mode: %s, driver: %s, vector extension: %v",
		storage.BuildMode, storage.DriverName, storage.VectorExtensionAvailable)

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("received signal %v, shutting down", sig)
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}
