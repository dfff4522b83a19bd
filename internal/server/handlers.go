package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/melissa/company-intel/internal/enrich"
	"github.com/melissa/company-intel/internal/types"
)

// handleEnrich runs the enrichment pipeline for one website
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req types.EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, string(enrich.KindInvalidURL), "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, string(enrich.KindInvalidURL), "website is required")
		return
	}

	result, err := s.enricher.Run(r.Context(), req)
	if err != nil {
		var classified *enrich.Error
		if !errors.As(err, &classified) {
			classified = enrich.Classify(err)
		}
		// Cause chains may carry hostnames and transport detail; log them
		// here and send only the classified message.
		log.Printf("Enrichment failed for %q: %v", req.Website, err)
		s.errorResponse(w, HTTPStatus(classified.Kind), string(classified.Kind), classified.Message)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}
