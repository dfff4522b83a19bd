package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, name, domain, website, category, description, tags, created_at, updated_at`

// CompanySeed is the input for creating or refreshing a catalog entry.
// Nil Category/Description leave any stored value untouched.
type CompanySeed struct {
	Name        string   `json:"name"`
	Website     string   `json:"website"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpsertCompany inserts a catalog entry keyed by the domain of its
// website, refreshing mutable fields on conflict.
func (db *DB) UpsertCompany(ctx context.Context, seed CompanySeed) (*Company, error) {
	domain, err := ExtractDomain(seed.Website)
	if err != nil || domain == "" {
		return nil, fmt.Errorf("cannot derive a domain from %q", seed.Website)
	}
	name := seed.Name
	if name == "" {
		name = domain
	}
	tags := seed.Tags
	if tags == nil {
		tags = []string{}
	}

	var c Company
	err = db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, domain, website, category, description, tags)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (domain) DO UPDATE SET
		     name = EXCLUDED.name,
		     website = EXCLUDED.website,
		     category = COALESCE(EXCLUDED.category, companies.category),
		     description = COALESCE(EXCLUDED.description, companies.description),
		     tags = CASE WHEN cardinality(EXCLUDED.tags) > 0 THEN EXCLUDED.tags ELSE companies.tags END,
		     updated_at = NOW()
		 RETURNING `+companyColumns,
		name, domain, seed.Website, seed.Category, seed.Description, tags,
	).Scan(&c.ID, &c.Name, &c.Domain, &c.Website, &c.Category, &c.Description, &c.Tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}

	return &c, nil
}

// GetCompanyByID retrieves a company by its UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var c Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Domain, &c.Website, &c.Category, &c.Description, &c.Tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// GetCompanyByDomain finds a company by domain, ignoring scheme and www
func (db *DB) GetCompanyByDomain(ctx context.Context, domain string) (*Company, error) {
	domain = normalizeDomain(domain)

	var c Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE domain = $1`,
		domain,
	).Scan(&c.ID, &c.Name, &c.Domain, &c.Website, &c.Category, &c.Description, &c.Tags, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by domain: %w", err)
	}
	return &c, nil
}

// CompanyFilters holds optional filters for listing companies
type CompanyFilters struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListCompanies retrieves companies with optional filters
func (db *DB) ListCompanies(ctx context.Context, filters CompanyFilters) ([]Company, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR domain ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.Website, &c.Category, &c.Description, &c.Tags, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// CountCompanies returns the catalog size under the same filters
func (db *DB) CountCompanies(ctx context.Context, filters CompanyFilters) (int, error) {
	query := `SELECT COUNT(*) FROM companies WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filters.Category)
		argNum++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR domain ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := db.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return total, nil
}

// Ping verifies database reachability for health checks
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// normalizeDomain cleans up a domain string
func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if idx := strings.IndexAny(domain, "/?#"); idx >= 0 {
		domain = domain[:idx]
	}
	if idx := strings.Index(domain, ":"); idx >= 0 {
		domain = domain[:idx]
	}
	return domain
}

// ExtractDomain extracts the domain from a full URL
func ExtractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := parsed.Host
	if host == "" {
		// Bare domains like "stripe.com" parse with an empty host.
		host = rawURL
	}
	return normalizeDomain(host), nil
}
