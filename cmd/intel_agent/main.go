// Package main provides the entry point for the Company Intel server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intel_agent",
	Short: "Company Intel enrichment server and CLI",
	Long:  "Company Intel turns a company website into a structured profile with an AI summary, keywords, and business signals, served over REST or run once from the command line.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
