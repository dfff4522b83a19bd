// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/melissa/company-intel/internal/enrich"
	"github.com/melissa/company-intel/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrapText breaks text into lines of at most width characters at word
// boundaries. A single word longer than width is left on its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}

// PrintEnrichmentResult outputs a human-readable view of the final enrichment.
func (p *Printer) PrintEnrichmentResult(result *types.EnrichmentResult) {
	if result == nil {
		return
	}

	var sb strings.Builder

	if result.Summary == "" && len(result.WhatTheyDo) == 0 {
		sb.WriteString("AI summary unavailable (partial result)\n\n")
	}

	if result.Summary != "" {
		for _, line := range wrapText(result.Summary, 52) {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	if len(result.WhatTheyDo) > 0 {
		sb.WriteString("What they do:\n")
		count := min(len(result.WhatTheyDo), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := result.WhatTheyDo[i]
			if len(item) > 50 {
				item = item[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", item))
		}
		if len(result.WhatTheyDo) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.WhatTheyDo)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(result.Keywords) > 0 {
		sb.WriteString("Keywords:\n")
		for _, line := range wrapText(strings.Join(result.Keywords, ", "), 52) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
		sb.WriteString("\n")
	}

	if len(result.Signals) > 0 {
		sb.WriteString("Signals:\n")
		count := min(len(result.Signals), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Signals[i]))
		}
		if len(result.Signals) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Signals)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(result.Sources) > 0 {
		sb.WriteString("Sources:\n")
		count := min(len(result.Sources), 3)
		for i := 0; i < count; i++ {
			source := result.Sources[i]
			if len(source) > 50 {
				source = source[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", source))
		}
		if len(result.Sources) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Sources)-3))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Generated: %s", result.Timestamp))

	p.printBox("COMPANY ENRICHMENT", sb.String())
}

// PrintFailure outputs the classified error for a run that produced no result.
func (p *Printer) PrintFailure(enrichErr *enrich.Error) {
	if enrichErr == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠ %s\n", enrichErr.Kind))

	message := enrichErr.Message
	if len(message) > 50 {
		message = message[:47] + "..."
	}
	sb.WriteString(fmt.Sprintf("  %s", message))

	p.printBox("ENRICHMENT FAILED", sb.String())
}
