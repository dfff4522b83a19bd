package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/melissa/company-intel/internal/config"
	"github.com/melissa/company-intel/internal/enrich"
	"github.com/melissa/company-intel/internal/observability"
	"github.com/melissa/company-intel/internal/types"
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <website>",
	Short: "Enrich a single company website and print the profile JSON",
	Long: `Run the enrichment pipeline once against a company website and write the
resulting profile JSON to stdout or to a file.

The website may be a bare domain ("stripe.com") or a full URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrichCmd,
}

var (
	enrichConfigPath  string
	enrichOutputFile  string
	enrichTimeoutSecs int
	enrichPartial     bool
	enrichVerbose     bool
)

func init() {
	enrichCmd.Flags().StringVar(&enrichConfigPath, "config", "", "Path to config.json file")
	enrichCmd.Flags().StringVarP(&enrichOutputFile, "output", "o", "", "Write result JSON to this file instead of stdout")
	enrichCmd.Flags().IntVar(&enrichTimeoutSecs, "timeout", 0, "Whole-request budget in seconds (overrides config)")
	enrichCmd.Flags().BoolVar(&enrichPartial, "partial", false, "Keep signals even when the AI summary fails")
	enrichCmd.Flags().BoolVarP(&enrichVerbose, "verbose", "v", false, "Print a formatted summary to stderr")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrichCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(enrichConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("timeout") {
		cfg.RequestTimeoutSecs = enrichTimeoutSecs
	}
	if cmd.Flags().Changed("partial") {
		cfg.AllowPartialResult = enrichPartial
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = enrichVerbose
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())

	client, enricher, err := newEnricher(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	result, err := enricher.Run(ctx, types.EnrichRequest{Website: args[0]})
	if err != nil {
		if cfg.Verbose {
			var enrichErr *enrich.Error
			if errors.As(err, &enrichErr) {
				observability.NewPrinter(os.Stderr).PrintFailure(enrichErr)
			}
		}
		return err
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if enrichOutputFile != "" {
		if err := os.WriteFile(enrichOutputFile, jsonBytes, 0644); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", enrichOutputFile, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s (%s)\n", enrichOutputFile, enrich.Describe(result))
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", jsonBytes)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintEnrichmentResult(result)
	}

	return nil
}
