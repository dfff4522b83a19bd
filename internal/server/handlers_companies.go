package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/melissa/company-intel/internal/db"
)

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// requireCatalog answers 503 when no database is configured
func (s *Server) requireCatalog(w http.ResponseWriter) bool {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "catalog_unavailable", "Catalog routes require a configured database")
		return false
	}
	return true
}

// handleListCompanies lists catalog companies with optional filters
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	if !s.requireCatalog(w) {
		return
	}

	filters := db.CompanyFilters{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Limit:    parseQueryInt(r, "limit", 50, 100),
		Offset:   parseQueryInt(r, "offset", 0, 0),
	}

	companies, err := s.db.ListCompanies(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal", "Database error: "+err.Error())
		return
	}
	total, err := s.db.CountCompanies(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal", "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"total":     total,
		"limit":     filters.Limit,
		"offset":    filters.Offset,
	})
}

// handleGetCompany retrieves a catalog company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	companyID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid company ID")
		return
	}
	if !s.requireCatalog(w) {
		return
	}

	company, err := s.db.GetCompanyByID(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal", "Database error: "+err.Error())
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "not_found", "Company not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, company)
}

// handleLookupCompany retrieves a catalog company by domain.
// Uses a query parameter so the route cannot shadow /api/companies/{id}.
func (s *Server) handleLookupCompany(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		s.errorResponse(w, http.StatusBadRequest, "invalid_request", "domain query parameter is required")
		return
	}
	if !s.requireCatalog(w) {
		return
	}

	company, err := s.db.GetCompanyByDomain(r.Context(), domain)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal", "Database error: "+err.Error())
		return
	}
	if company == nil {
		s.errorResponse(w, http.StatusNotFound, "not_found", "Company not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, company)
}
