// Command seed_companies loads a JSON seed file into the companies catalog.
//
// Each entry is upserted by domain, so re-running against the same file is
// safe and picks up edits to existing rows.
//
// Usage:
//
//	go run cmd/tools/seed_companies/main.go data/companies_seed.json
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/melissa/company-intel/internal/db"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: seed_companies <seed-file.json>")
		os.Exit(1)
	}
	seedPath := os.Args[1]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	raw, err := os.ReadFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read seed file: %v\n", err)
		os.Exit(1)
	}

	var seeds []db.CompanySeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to parse seed file: %v\n", err)
		os.Exit(1)
	}
	if len(seeds) == 0 {
		fmt.Println("Seed file is empty; nothing to do.")
		return
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to ensure schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Company Catalog Seed ===")
	fmt.Println()
	fmt.Printf("Loading %d companies from %s\n\n", len(seeds), seedPath)

	created := 0
	updated := 0
	failed := 0

	for _, seed := range seeds {
		existing, err := database.GetCompanyByDomain(ctx, seed.Website)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", seed.Website, err)
			failed++
			continue
		}

		company, err := database.UpsertCompany(ctx, seed)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", seed.Website, err)
			failed++
			continue
		}

		if existing == nil {
			fmt.Printf("  ✓ Created: %s (%s)\n", company.Name, company.Domain)
			created++
		} else {
			fmt.Printf("  • Updated: %s (%s)\n", company.Name, company.Domain)
			updated++
		}
	}

	fmt.Println()
	fmt.Println("=== Seed Summary ===")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Updated: %d\n", updated)
	fmt.Printf("  Failed: %d\n", failed)
	fmt.Printf("  Total: %d\n", len(seeds))
}
