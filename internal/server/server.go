// Package server provides the HTTP REST API for the company intel service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/melissa/company-intel/internal/config"
	"github.com/melissa/company-intel/internal/db"
	"github.com/melissa/company-intel/internal/metrics"
	"github.com/melissa/company-intel/internal/types"
)

// Enricher runs one enrichment request. Satisfied by *enrich.Enricher.
type Enricher interface {
	Run(ctx context.Context, req types.EnrichRequest) (*types.EnrichmentResult, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	enricher   Enricher
	db         *db.DB // nil when no catalog database is configured
}

// New creates a new server instance. The database may be nil; catalog
// routes then answer 503 while enrichment keeps working.
func New(cfg config.Config, enricher Enricher, database *db.DB) *Server {
	s := &Server{
		enricher: enricher,
		db:       database,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/enrich", s.handleEnrich)
	mux.HandleFunc("GET /api/companies", s.handleListCompanies)
	mux.HandleFunc("GET /api/companies/lookup", s.handleLookupCompany)
	mux.HandleFunc("GET /api/companies/{id}", s.handleGetCompany)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Longer than the enrichment budget
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging and per-route metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, recorder.status, time.Since(start))

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(recorder.status/100*100)).Inc()
	})
}

// handleHealth returns server health and catalog reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "disabled"
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			database = "unreachable"
		} else {
			database = "ok"
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response with a taxonomy kind
func (s *Server) errorResponse(w http.ResponseWriter, status int, kind, message string) {
	s.jsonResponse(w, status, map[string]string{
		"error":   kind,
		"message": message,
	})
}
