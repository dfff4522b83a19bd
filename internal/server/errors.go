package server

import (
	"net/http"

	"github.com/melissa/company-intel/internal/enrich"
)

// HTTPStatus maps a pipeline failure kind to a response status code.
// Unreachable sites and redirect loops both read as "not there" to the
// caller, so they share 404.
func HTTPStatus(kind enrich.Kind) int {
	switch kind {
	case enrich.KindInvalidURL:
		return http.StatusBadRequest
	case enrich.KindUnreachable, enrich.KindTooManyRedirects:
		return http.StatusNotFound
	case enrich.KindTimeout, enrich.KindRequestTimeout:
		return http.StatusGatewayTimeout
	case enrich.KindEmptyContent, enrich.KindAIUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
