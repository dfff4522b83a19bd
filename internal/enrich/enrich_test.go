package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melissa/company-intel/internal/extract"
	"github.com/melissa/company-intel/internal/fetch"
	"github.com/melissa/company-intel/internal/llm"
	"github.com/melissa/company-intel/internal/signals"
	"github.com/melissa/company-intel/internal/summary"
	"github.com/melissa/company-intel/internal/types"
	"github.com/melissa/company-intel/internal/weburl"
)

// fakeClient returns a canned response without any network access.
type fakeClient struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return f.GenerateJSON(context.Background(), prompt, llm.TierStandard)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "test-model" }

func (f *fakeClient) Close() error { return nil }

const goodResponse = `{
	"summary": "Volt processes online payments for software businesses.",
	"whatTheyDo": ["Payment APIs", "Fraud screening", "Payout scheduling"],
	"keywords": ["payments", "api", "fintech", "billing", "checkout"]
}`

// landingPage builds a payments-company home page with enough copy to
// skip supplementary fetches.
func landingPage() string {
	copyBlock := strings.Repeat("Volt provides payment APIs that let software businesses accept cards, wallets, and bank transfers in one integration. ", 16)
	return fmt.Sprintf(`<html>
<head><title>Volt - Payments Infrastructure</title>
<meta name="description" content="Payment APIs for software businesses."></head>
<body>
<nav><a href="/careers">Careers</a><a href="/blog">Blog</a><a href="/pricing">Pricing</a><a href="/docs">Docs</a></nav>
<main><h1>Payments infrastructure for the internet</h1><p>%s</p></main>
<footer><a href="https://twitter.com/volt">Twitter</a></footer>
</body></html>`, copyBlock)
}

func testServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)
	return server
}

func testEnricher(client llm.Client, opts Options) *Enricher {
	opts.AllowPrivateHosts = true
	return New(client, opts)
}

func TestRun_EnrichesCompanySite(t *testing.T) {
	server := testServer(t, map[string]string{"/": landingPage()})
	client := &fakeClient{response: goodResponse}
	enricher := testEnricher(client, Options{})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})
	require.NoError(t, err)

	assert.Equal(t, "Volt processes online payments for software businesses.", result.Summary)
	assert.Len(t, result.WhatTheyDo, 3)
	assert.Len(t, result.Keywords, 5)

	assert.Contains(t, result.Signals, "Actively hiring")
	assert.Contains(t, result.Signals, "Invests in content marketing")
	assert.Contains(t, result.Sources, "/careers")
	assert.Contains(t, result.Sources, "/blog")

	parsed, err := time.Parse(time.RFC3339, result.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
}

func TestRun_InvalidURL(t *testing.T) {
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: "ftp://example.com"})
	assert.Nil(t, result)

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindInvalidURL, classified.Kind)
}

func TestRun_PrivateHostRejectedByDefault(t *testing.T) {
	enricher := New(&fakeClient{response: goodResponse}, Options{})

	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: "http://127.0.0.1:9"})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindInvalidURL, classified.Kind)
}

func TestRun_UnreachableOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{})

	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindUnreachable, classified.Kind)
}

func TestRun_TooManyRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL, http.StatusFound)
	}))
	t.Cleanup(server.Close)
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{})

	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindTooManyRedirects, classified.Kind)
}

func TestRun_EmptyContent(t *testing.T) {
	server := testServer(t, map[string]string{"/": "<html><body><p>hi</p></body></html>"})
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{})

	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindEmptyContent, classified.Kind)
}

func TestRun_ModelFailureFailsWholeRequest(t *testing.T) {
	server := testServer(t, map[string]string{"/": landingPage()})
	enricher := testEnricher(&fakeClient{response: "I could not produce the analysis."}, Options{})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})
	assert.Nil(t, result)

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindAIUnavailable, classified.Kind)
}

func TestRun_PartialResultWhenAllowed(t *testing.T) {
	server := testServer(t, map[string]string{"/": landingPage()})
	enricher := testEnricher(&fakeClient{response: "garbage"}, Options{})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL, AllowPartial: true})
	require.NoError(t, err)

	assert.Empty(t, result.Summary)
	assert.NotNil(t, result.WhatTheyDo)
	assert.Empty(t, result.WhatTheyDo)
	assert.Contains(t, result.Signals, "Actively hiring")
	assert.Contains(t, result.Sources, "/careers")
}

func TestRun_RequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		fmt.Fprint(w, landingPage())
	}))
	t.Cleanup(server.Close)
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{RequestTimeout: 150 * time.Millisecond})

	start := time.Now()
	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindRequestTimeout, classified.Kind)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_FetchTimeoutWithinBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, landingPage())
	}))
	t.Cleanup(server.Close)
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = 100 * time.Millisecond
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{Fetch: fetchOpts})

	_, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})

	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindTimeout, classified.Kind)
}

func TestRun_CancellationPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, landingPage())
	}))
	t.Cleanup(server.Close)
	enricher := testEnricher(&fakeClient{response: goodResponse}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := enricher.Run(ctx, types.EnrichRequest{Website: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRun_SupplementsThinLandingPage(t *testing.T) {
	thin := `<html><head><title>Volt</title></head><body>
<nav><a href="/careers">Careers</a></nav>
<main><p>Volt builds payments infrastructure for software businesses around the world.</p></main>
</body></html>`
	about := `<html><body><main><p>Founded in 2016 by payments engineers, Volt operates settlement rails in forty countries and keeps uptime above four nines.</p></main></body></html>`
	server := testServer(t, map[string]string{"/": thin, "/about": about})
	client := &fakeClient{response: goodResponse}
	enricher := testEnricher(client, Options{})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})
	require.NoError(t, err)

	assert.Contains(t, client.lastPrompt, "Founded in 2016 by payments engineers")
	assert.Contains(t, result.Signals, "Actively hiring")
}

func TestRun_NilClientWithPartialPolicy(t *testing.T) {
	server := testServer(t, map[string]string{"/": landingPage()})
	enricher := testEnricher(nil, Options{AllowPartial: true})

	result, err := enricher.Run(context.Background(), types.EnrichRequest{Website: server.URL})
	require.NoError(t, err)
	assert.Empty(t, result.Summary)
	assert.Contains(t, result.Signals, "Actively hiring")
}

func TestClassify_StageErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"invalid url", &weburl.InvalidURLError{URL: "x", Message: "bad"}, KindInvalidURL},
		{"redirect loop", &fetch.RedirectError{URL: "x", Limit: 5}, KindTooManyRedirects},
		{"fetch timeout", &fetch.TimeoutError{URL: "x", After: time.Second}, KindTimeout},
		{"http failure", &fetch.Error{URL: "x", Message: "status 503"}, KindUnreachable},
		{"thin page", &extract.EmptyContentError{URL: "x", Length: 10}, KindEmptyContent},
		{"model failure", &summary.UnavailableError{Message: "bad json"}, KindAIUnavailable},
		{"deadline", context.DeadlineExceeded, KindRequestTimeout},
		{"canceled", context.Canceled, KindInternal},
		{"unknown", errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := Classify(tc.err)
			require.NotNil(t, classified)
			assert.Equal(t, tc.kind, classified.Kind)
		})
	}
}

func TestClassify_PassesThroughClassifiedErrors(t *testing.T) {
	original := &Error{Kind: KindUnreachable, Message: "gone"}
	wrapped := fmt.Errorf("pipeline: %w", original)
	assert.Same(t, original, Classify(wrapped))
	assert.Nil(t, Classify(nil))
}

func TestAssemble_NeverNilSlices(t *testing.T) {
	result := assemble(&types.CompanySummary{}, signals.Detection{})
	assert.NotNil(t, result.WhatTheyDo)
	assert.NotNil(t, result.Keywords)
	assert.NotNil(t, result.Signals)
	assert.NotNil(t, result.Sources)

	_, err := time.Parse(time.RFC3339, result.Timestamp)
	assert.NoError(t, err)
}
