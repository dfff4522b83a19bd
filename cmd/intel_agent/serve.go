package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/melissa/company-intel/internal/config"
	"github.com/melissa/company-intel/internal/db"
	"github.com/melissa/company-intel/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the enrichment pipeline and the company catalog over REST.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(serveConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	client, enricher, err := newEnricher(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// The catalog is optional; enrichment works without a database.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure database schema: %w", err)
		}
	} else {
		log.Printf("DATABASE_URL not set; catalog routes disabled")
	}

	srv := server.New(cfg, enricher, database)
	return srv.Start()
}
