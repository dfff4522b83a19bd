package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/melissa/company-intel/internal/enrich"
	"github.com/melissa/company-intel/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintEnrichmentResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.EnrichmentResult{
		Summary: "Volt provides real-time payment infrastructure for online merchants.",
		WhatTheyDo: []string{
			"Processes account-to-account payments",
			"Offers fraud screening for checkout flows",
			"Provides merchant reporting dashboards",
		},
		Keywords:  []string{"payments", "fintech", "open banking", "api", "merchants"},
		Signals:   []string{"Actively hiring", "Developer-focused product"},
		Sources:   []string{"https://volt.example/careers", "https://volt.example/docs"},
		Timestamp: "2025-06-01T12:00:00Z",
	}

	p.PrintEnrichmentResult(result)
	output := buf.String()

	assert.Contains(t, output, "COMPANY ENRICHMENT")
	assert.Contains(t, output, "Volt provides real-time payment")
	assert.Contains(t, output, "Processes account-to-account payments")
	assert.Contains(t, output, "payments, fintech")
	assert.Contains(t, output, "Actively hiring")
	assert.Contains(t, output, "/careers")
	assert.Contains(t, output, "2025-06-01T12:00:00Z")
}

func TestPrintEnrichmentResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEnrichmentResult(nil)

	assert.Empty(t, buf.String())
}

func TestPrintEnrichmentResult_PartialResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.EnrichmentResult{
		Summary:    "",
		WhatTheyDo: []string{},
		Keywords:   []string{},
		Signals:    []string{"Actively hiring"},
		Sources:    []string{"https://volt.example/careers"},
		Timestamp:  "2025-06-01T12:00:00Z",
	}

	p.PrintEnrichmentResult(result)
	output := buf.String()

	assert.Contains(t, output, "AI summary unavailable")
	assert.Contains(t, output, "Actively hiring")
}

func TestPrintEnrichmentResult_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.EnrichmentResult{
		Summary: "A company.",
		WhatTheyDo: []string{
			"first", "second", "third", "fourth", "fifth", "sixth", "seventh",
		},
		Keywords: []string{"one"},
		Sources: []string{
			"https://a.example/x", "https://a.example/y",
			"https://a.example/z", "https://a.example/w",
		},
		Timestamp: "2025-06-01T12:00:00Z",
	}

	p.PrintEnrichmentResult(result)
	output := buf.String()

	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "seventh")
}

func TestPrintEnrichmentResult_LineWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.EnrichmentResult{
		Summary:    strings.Repeat("longword", 12),
		WhatTheyDo: []string{strings.Repeat("x", 80)},
		Timestamp:  "2025-06-01T12:00:00Z",
	}

	p.PrintEnrichmentResult(result)

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFailure(&enrich.Error{
		Kind:    enrich.KindUnreachable,
		Message: "site returned status 503",
	})
	output := buf.String()

	assert.Contains(t, output, "ENRICHMENT FAILED")
	assert.Contains(t, output, "unreachable")
	assert.Contains(t, output, "site returned status 503")
}

func TestPrintFailure_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFailure(nil)

	assert.Empty(t, buf.String())
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 20))
	assert.Equal(t, []string{"short"}, wrapText("short", 20))
	assert.Equal(t,
		[]string{"alpha beta", "gamma"},
		wrapText("alpha beta gamma", 10))
}
