package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// stdout is reserved for command output and the MCP protocol.
	log.SetOutput(os.Stderr)

	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
