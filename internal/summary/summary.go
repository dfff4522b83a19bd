// Package summary coerces an external language model into the strict
// company-summary contract: typed fields, bounded list sizes, and a
// fail-closed response to anything malformed.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/melissa/company-intel/internal/extract"
	"github.com/melissa/company-intel/internal/llm"
	"github.com/melissa/company-intel/internal/prompts"
	"github.com/melissa/company-intel/internal/schemas"
	"github.com/melissa/company-intel/internal/types"
)

const (
	promptFile = "enrichment.json"
	promptKey  = "summarize-company"

	// maxContentTokens bounds how much page text enters the prompt when
	// multiple pages were merged for analysis.
	maxContentTokens = 4000
)

// UnavailableError reports that the model call failed or returned output
// that does not satisfy the summary contract. The summarizer never
// substitutes placeholder data for a bad reply.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ai summarizer unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ai summarizer unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Summarizer produces typed company summaries through a process-wide
// LLM client injected at construction.
type Summarizer struct {
	client llm.Client
	tier   llm.ModelTier
}

// New creates a Summarizer. An empty tier selects the standard tier.
func New(client llm.Client, tier llm.ModelTier) *Summarizer {
	if tier == "" {
		tier = llm.TierStandard
	}
	return &Summarizer{client: client, tier: tier}
}

// Summarize sends extracted content to the model and validates the reply
// against the summary schema. Signals and sources are never part of the
// output; those come from structural detection, not the model.
func (s *Summarizer) Summarize(ctx context.Context, content *extract.Content) (*types.CompanySummary, error) {
	if s.client == nil {
		return nil, &UnavailableError{Message: "no AI client configured"}
	}

	prompt, err := s.buildPrompt(content)
	if err != nil {
		return nil, &UnavailableError{Message: "failed to build prompt", Cause: err}
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, &UnavailableError{Message: "model call failed", Cause: err}
	}

	// One repair pass: recover a fenced or prose-wrapped JSON payload.
	// Anything that still fails to parse or validate is a hard failure.
	cleaned := llm.CleanJSONBlock(raw)

	var result types.CompanySummary
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &UnavailableError{Message: "response is not valid JSON", Cause: err}
	}

	if err := schemas.Validate(schemas.EnrichmentSummary, cleaned); err != nil {
		return nil, &UnavailableError{Message: "response violates summary schema", Cause: err}
	}

	normalize(&result)
	return &result, nil
}

// buildPrompt renders the summarization template with the page content,
// trimming the content to the token budget when pages were merged.
func (s *Summarizer) buildPrompt(content *extract.Content) (string, error) {
	template, err := prompts.Get(promptFile, promptKey)
	if err != nil {
		return "", err
	}

	body := content.BodyText
	if len(body) > 2*maxContentTokens {
		trimmed, err := llm.TruncateToTokens(s.client.GetModel(s.tier), body, maxContentTokens)
		if err != nil {
			// Tokenizer unavailable; fall back to a coarse byte cap.
			if len(body) > 4*maxContentTokens {
				body = body[:4*maxContentTokens]
			}
		} else {
			body = trimmed
		}
	}

	return prompts.Format(template, map[string]string{
		"Title":       content.Title,
		"Description": content.MetaDescription,
		"Content":     body,
	}), nil
}

// normalize trims stray whitespace the model sometimes pads fields with.
func normalize(result *types.CompanySummary) {
	result.Summary = strings.TrimSpace(result.Summary)
	for i, item := range result.WhatTheyDo {
		result.WhatTheyDo[i] = strings.TrimSpace(item)
	}
	for i, keyword := range result.Keywords {
		result.Keywords[i] = strings.TrimSpace(keyword)
	}
}
