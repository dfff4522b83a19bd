// Package enrich orchestrates the company enrichment pipeline: normalize
// the URL, fetch the page, extract content, then detect signals and call
// the model in parallel before assembling the result.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/melissa/company-intel/internal/extract"
	"github.com/melissa/company-intel/internal/fetch"
	"github.com/melissa/company-intel/internal/llm"
	"github.com/melissa/company-intel/internal/metrics"
	"github.com/melissa/company-intel/internal/signals"
	"github.com/melissa/company-intel/internal/summary"
	"github.com/melissa/company-intel/internal/types"
	"github.com/melissa/company-intel/internal/weburl"
)

const (
	// DefaultRequestTimeout bounds one whole enrichment run.
	DefaultRequestTimeout = 45 * time.Second

	// DefaultAIConcurrency caps in-flight model calls across requests.
	DefaultAIConcurrency = 8

	// minSeedChars is the body length below which well-known company
	// subpages are fetched to give the model more to work with.
	minSeedChars = 1500

	// maxSupplementPages caps how many supplementary pages are merged in.
	maxSupplementPages = 2
)

// supplementPaths are tried in order when the landing page is thin.
var supplementPaths = []string{"/about", "/about-us", "/company"}

// Options configures an Enricher. Zero values fall back to defaults.
type Options struct {
	// RequestTimeout bounds the whole pipeline for one request.
	RequestTimeout time.Duration

	// Fetch carries per-page fetch settings (timeout, redirect cap).
	Fetch *fetch.Options

	// AllowPartial returns results without AI fields when only the
	// summarizer fails. Requests can also opt in individually.
	AllowPartial bool

	// AllowPrivateHosts admits loopback and private-range hosts.
	// Meant for tests against local servers.
	AllowPrivateHosts bool

	// AITier selects the model tier for summaries.
	AITier llm.ModelTier

	// AIConcurrency caps concurrent model calls. Zero means the default.
	AIConcurrency int
}

// Enricher runs enrichment requests against a shared model client.
// Construct one per process and reuse it; it is safe for concurrent use.
type Enricher struct {
	summarizer *summary.Summarizer
	sem        *semaphore.Weighted
	opts       Options
}

// New builds an Enricher around a shared model client. The client may be
// nil, in which case every summary fails as unavailable and only partial
// results are possible.
func New(client llm.Client, opts Options) *Enricher {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.AIConcurrency <= 0 {
		opts.AIConcurrency = DefaultAIConcurrency
	}
	if opts.Fetch == nil {
		opts.Fetch = fetch.DefaultOptions()
	}
	if opts.AllowPrivateHosts {
		opts.Fetch.AllowPrivateHosts = true
	}
	return &Enricher{
		summarizer: summary.New(client, opts.AITier),
		sem:        semaphore.NewWeighted(int64(opts.AIConcurrency)),
		opts:       opts,
	}
}

// Run enriches one company website and returns the assembled result.
// Failures come back as *Error with a Kind the transport can map.
func (e *Enricher) Run(ctx context.Context, req types.EnrichRequest) (*types.EnrichmentResult, error) {
	requestID := uuid.New().String()[:8]
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	defer cancel()

	result, err := e.run(ctx, requestID, req)
	elapsed := time.Since(start)
	if err != nil {
		classified := Classify(err)
		// Once the request budget is gone, any stage failure is
		// reported as a whole-request timeout. A canceled caller is
		// reported as such no matter which stage tripped first.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			classified = &Error{Kind: KindRequestTimeout, Message: "enrichment exceeded the request budget", Cause: err}
		} else if errors.Is(ctx.Err(), context.Canceled) {
			classified = &Error{Kind: KindInternal, Message: "request canceled", Cause: err}
		}
		metrics.ObserveEnrichment(string(classified.Kind), elapsed)
		log.Printf("[%s] Failed after %s: %v", requestID, elapsed.Round(time.Millisecond), classified)
		return nil, classified
	}

	metrics.ObserveEnrichment("ok", elapsed)
	metrics.ObserveSignals(result.Signals)
	log.Printf("[%s] Done in %s (%d signals, %d keywords)",
		requestID, elapsed.Round(time.Millisecond), len(result.Signals), len(result.Keywords))
	return result, nil
}

func (e *Enricher) run(ctx context.Context, requestID string, req types.EnrichRequest) (*types.EnrichmentResult, error) {
	log.Printf("[%s] Normalizing %q", requestID, strings.TrimSpace(req.Website))
	normalized, err := weburl.Normalize(req.Website, &weburl.Options{AllowPrivateHosts: e.opts.AllowPrivateHosts})
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] Fetching %s", requestID, normalized)
	page, err := fetch.URL(ctx, normalized, e.opts.Fetch)
	if err != nil {
		return nil, err
	}

	content, err := extract.FromHTML(page.HTML, page.FinalURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[%s] Extracted %d chars, %d links from %s",
		requestID, len(content.BodyText), len(content.Links), content.URL)

	content = e.supplement(ctx, requestID, content)

	var (
		detection signals.Detection
		aiSummary *types.CompanySummary
	)
	// Both branches read the same immutable content and write disjoint
	// variables, joined by Wait before any read.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detection = signals.Detect(content.Links, content.BodyText)
		return nil
	})
	g.Go(func() error {
		if err := e.sem.Acquire(gctx, 1); err != nil {
			return err
		}
		defer e.sem.Release(1)
		summarized, err := e.summarizer.Summarize(gctx, content)
		if err != nil {
			metrics.ModelCalls.WithLabelValues("error").Inc()
			return err
		}
		metrics.ModelCalls.WithLabelValues("ok").Inc()
		aiSummary = summarized
		return nil
	})
	if err := g.Wait(); err != nil {
		var unavailable *summary.UnavailableError
		if (req.AllowPartial || e.opts.AllowPartial) && errors.As(err, &unavailable) && ctx.Err() == nil {
			log.Printf("[%s] Warning: summarizer unavailable, returning partial result: %v", requestID, err)
			aiSummary = &types.CompanySummary{WhatTheyDo: []string{}, Keywords: []string{}}
		} else {
			return nil, err
		}
	}

	return assemble(aiSummary, detection), nil
}

// supplement fetches up to maxSupplementPages well-known company pages
// when the landing page body is thin, and merges their text into a new
// content value. Failures are skipped; the seed content always survives.
func (e *Enricher) supplement(ctx context.Context, requestID string, content *extract.Content) *extract.Content {
	if len(content.BodyText) >= minSeedChars {
		return content
	}
	base, err := url.Parse(content.URL)
	if err != nil {
		return content
	}

	merged := *content
	fetched := 0
	for _, path := range supplementPaths {
		if fetched >= maxSupplementPages || ctx.Err() != nil {
			break
		}
		pageURL := base.ResolveReference(&url.URL{Path: path}).String()
		page, err := fetch.URL(ctx, pageURL, e.opts.Fetch)
		if err != nil {
			continue
		}
		sub, err := extract.FromHTML(page.HTML, page.FinalURL)
		if err != nil {
			continue
		}
		log.Printf("[%s] Supplementing with %s (%d chars)", requestID, path, len(sub.BodyText))
		merged.BodyText = extract.TruncateAtBoundary(merged.BodyText+"\n\n"+sub.BodyText, extract.MaxBodyChars)
		fetched++
	}
	return &merged
}

func assemble(aiSummary *types.CompanySummary, detection signals.Detection) *types.EnrichmentResult {
	result := &types.EnrichmentResult{
		Summary:    aiSummary.Summary,
		WhatTheyDo: aiSummary.WhatTheyDo,
		Keywords:   aiSummary.Keywords,
		Signals:    detection.Signals,
		Sources:    detection.Sources,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if result.WhatTheyDo == nil {
		result.WhatTheyDo = []string{}
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	if result.Signals == nil {
		result.Signals = []string{}
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}
	return result
}

// Describe returns a short human-readable line for logs and CLI output.
func Describe(result *types.EnrichmentResult) string {
	return fmt.Sprintf("%d signals, %d keywords, %d sources", len(result.Signals), len(result.Keywords), len(result.Sources))
}
