package main

import (
	"context"
	"fmt"
	"os"

	"github.com/melissa/company-intel/internal/config"
	"github.com/melissa/company-intel/internal/enrich"
	"github.com/melissa/company-intel/internal/fetch"
	"github.com/melissa/company-intel/internal/llm"
)

// loadRuntimeConfig loads and validates the optional config file. Flag
// overrides and default merging happen in the individual commands.
func loadRuntimeConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path == "" {
		return cfg, nil
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}
	return *loaded, nil
}

// newEnricher builds the shared model client and an Enricher from config.
// The caller owns the returned client and should Close it on exit.
func newEnricher(ctx context.Context, cfg config.Config) (llm.Client, *enrich.Enricher, error) {
	envVar := "GEMINI_API_KEY"
	if cfg.AIProvider == "openai" {
		envVar = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, nil, fmt.Errorf("%s environment variable is required", envVar)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfigForProvider(llm.Provider(cfg.AIProvider)), apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.FetchTimeout()
	fetchOpts.MaxRedirects = cfg.MaxRedirects

	enricher := enrich.New(client, enrich.Options{
		RequestTimeout:    cfg.RequestTimeout(),
		Fetch:             fetchOpts,
		AllowPartial:      cfg.AllowPartialResult,
		AllowPrivateHosts: cfg.AllowPrivateHosts,
		AITier:            llm.ModelTier(cfg.AITier),
		AIConcurrency:     cfg.AIMaxConcurrent,
	})

	return client, enricher, nil
}
