// Package types provides type definitions for structured data used throughout the company-intel system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// EnrichRequest represents a request to enrich a single company website.
type EnrichRequest struct {
	Website      string `json:"website" validate:"required,min=1"`
	AllowPartial bool   `json:"allowPartial,omitempty"`
}

// CompanySummary is the structured profile produced by the language model.
type CompanySummary struct {
	Summary    string   `json:"summary"`
	WhatTheyDo []string `json:"whatTheyDo"`
	Keywords   []string `json:"keywords"`
}

// EnrichmentResult is the final assembled profile for one company website.
// Field names are part of the wire contract and must not change casing.
type EnrichmentResult struct {
	Summary    string   `json:"summary"`
	WhatTheyDo []string `json:"whatTheyDo"`
	Keywords   []string `json:"keywords"`
	Signals    []string `json:"signals"`
	Sources    []string `json:"sources"`
	Timestamp  string   `json:"timestamp"` // RFC3339 format
}

// Validate validates the EnrichRequest using the validator.
func (r *EnrichRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
