package db

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a catalog record keyed by its domain. The catalog is
// seed and reference data; enrichment results are never written back.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	Website     string    `json:"website"`
	Category    *string   `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
