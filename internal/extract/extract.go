// Package extract turns fetched HTML into the clean, bounded content that
// the analysis stages consume. Extraction is pure: the same HTML and URL
// always produce the same Content.
package extract

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	readability "github.com/go-shiori/go-readability"
)

// MaxBodyChars caps extracted body text. Longer pages are cut at a
// sentence or word boundary.
const MaxBodyChars = 8000

// MinBodyChars is the minimum body text for a page to count as content.
const MinBodyChars = 50

// MaxLinks caps how many same-origin paths are collected per page.
const MaxLinks = 50

// readabilityMinChars is the minimum text readability must recover before
// its result is preferred over the whole-body fallback.
const readabilityMinChars = 200

// contentSelectors is the landmark cascade tried before falling back to
// readability extraction and finally the whole body.
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".content",
	"#content",
	".main-content",
	"#main-content",
}

// noiseSelector removes elements that never carry company copy.
const noiseSelector = "nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// Content is the cleaned, immutable extraction output for one page.
type Content struct {
	URL             string   // final URL the HTML came from
	Title           string
	MetaDescription string
	BodyText        string
	Links           []string // same-origin paths, deduplicated, capped at MaxLinks
}

// Error represents a failure to parse or process HTML.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// EmptyContentError reports a page with too little text to analyze.
type EmptyContentError struct {
	URL    string
	Length int
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("empty content for %s: %d chars of body text", e.URL, e.Length)
}

// FromHTML extracts title, description, body text, and same-origin link
// paths from a fetched page. pageURL must be the final URL the HTML was
// served from so relative links resolve correctly.
func FromHTML(html, pageURL string) (*Content, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "invalid page URL", Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}

	// Collect links before noise removal so nav and footer anchors count.
	links := collectLinks(doc, base)

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	// Open Graph tags fill in whatever the document head left blank.
	if title == "" || description == "" {
		og := opengraph.NewOpenGraph()
		if err := og.ProcessHTML(strings.NewReader(html)); err == nil {
			if title == "" {
				title = strings.TrimSpace(og.Title)
			}
			if description == "" {
				description = strings.TrimSpace(og.Description)
			}
		}
	}

	doc.Find(noiseSelector).Remove()

	bodyText := mainText(doc, html, base)
	bodyText = TruncateAtBoundary(bodyText, MaxBodyChars)

	if len(bodyText) < MinBodyChars {
		return nil, &EmptyContentError{URL: pageURL, Length: len(bodyText)}
	}

	return &Content{
		URL:             pageURL,
		Title:           title,
		MetaDescription: description,
		BodyText:        bodyText,
		Links:           links,
	}, nil
}

// mainText finds the page's main copy: landmark elements first, then
// readability extraction, then the whole body.
func mainText(doc *goquery.Document, html string, base *url.URL) string {
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			if text := cleanWhitespace(selection.First().Text()); len(text) >= MinBodyChars {
				return text
			}
		}
	}

	if article, err := readability.FromReader(strings.NewReader(html), base); err == nil {
		if text := cleanWhitespace(article.TextContent); len(text) >= readabilityMinChars {
			return text
		}
	}

	return cleanWhitespace(doc.Find("body").Text())
}

// collectLinks gathers same-origin anchor paths in document order.
func collectLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if len(links) >= MaxLinks {
			return
		}

		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return // Skip malformed URLs
		}

		resolved := base.ResolveReference(linkURL)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !sameOrigin(base, resolved) {
			return
		}

		path := strings.TrimSuffix(resolved.Path, "/")
		if path == "" {
			return
		}

		if !seen[path] {
			seen[path] = true
			links = append(links, path)
		}
	})

	return links
}

// sameOrigin compares hosts ignoring a www prefix, so www.example.com and
// example.com count as the same site.
func sameOrigin(a, b *url.URL) bool {
	return stripWWW(a.Hostname()) == stripWWW(b.Hostname()) && a.Port() == b.Port()
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// TruncateAtBoundary cuts text to limit, preferring a sentence end in the
// second half of the window, then a word break.
func TruncateAtBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	if idx := strings.LastIndexAny(cut, ".!?"); idx >= limit/2 {
		return strings.TrimSpace(cut[:idx+1])
	}
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}

	// No boundary to cut at. Trim any rune split by the byte cut.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
