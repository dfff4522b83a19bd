package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/melissa/company-intel/internal/extract"
	"github.com/melissa/company-intel/internal/fetch"
	"github.com/melissa/company-intel/internal/summary"
	"github.com/melissa/company-intel/internal/weburl"
)

// Kind classifies a pipeline failure so transports can map it to a
// response without inspecting stage internals.
type Kind string

const (
	KindInvalidURL       Kind = "invalid_url"
	KindUnreachable      Kind = "unreachable"
	KindTooManyRedirects Kind = "too_many_redirects"
	KindTimeout          Kind = "timeout"
	KindEmptyContent     Kind = "empty_content"
	KindAIUnavailable    Kind = "ai_unavailable"
	KindRequestTimeout   Kind = "request_timeout"
	KindInternal         Kind = "internal"
)

// Error is a classified enrichment failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("enrichment failed (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("enrichment failed (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify maps a stage error onto the pipeline failure taxonomy.
// Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var invalidURL *weburl.InvalidURLError
	if errors.As(err, &invalidURL) {
		return &Error{Kind: KindInvalidURL, Message: invalidURL.Message, Cause: err}
	}

	var redirect *fetch.RedirectError
	if errors.As(err, &redirect) {
		return &Error{Kind: KindTooManyRedirects, Message: fmt.Sprintf("gave up after %d redirects", redirect.Limit), Cause: err}
	}

	var timeout *fetch.TimeoutError
	if errors.As(err, &timeout) {
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("site did not respond within %s", timeout.After), Cause: err}
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return &Error{Kind: KindUnreachable, Message: fetchErr.Message, Cause: err}
	}

	var empty *extract.EmptyContentError
	if errors.As(err, &empty) {
		return &Error{Kind: KindEmptyContent, Message: "page has too little text to analyze", Cause: err}
	}

	var unavailable *summary.UnavailableError
	if errors.As(err, &unavailable) {
		return &Error{Kind: KindAIUnavailable, Message: unavailable.Message, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindRequestTimeout, Message: "enrichment exceeded the request budget", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindInternal, Message: "request canceled", Cause: err}
	}

	return &Error{Kind: KindInternal, Message: "unexpected pipeline failure", Cause: err}
}
