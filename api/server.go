// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration,
// output serialization. The API NEVER performs cost logic.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/logging"
)

// Server is the API server
type Server struct {
	orchestrator *engine.Orchestrator
	mux          *http.ServeMux
	version      string
}

// NewServer creates a new API server around a shared orchestrator
func NewServer(version string, orchestrator *engine.Orchestrator) *Server {
	s := &Server{
		orchestrator: orchestrator,
		mux:          http.NewServeMux(),
		version:      version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /v1/quote", s.handleQuote)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleQuote handles POST /v1/quote
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := uuid.NewString()

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	if err := validateQuoteRequest(&req); err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	req.Input.Process = types.NormalizeProcess(string(req.Input.Process))

	opts := []engine.RunOption{engine.WithFlags(req.Flags)}
	switch strings.ToLower(req.LeadTimeClass) {
	case "express", "rush":
		opts = append(opts, engine.WithFlag("leadtime.express", true))
	}

	// Run the engine (NO COST LOGIC HERE)
	result, err := s.orchestrator.Run(ctx, req.Input, opts...)
	if err != nil {
		logging.Error("pricing run failed",
			zap.String("request_id", requestID),
			zap.String("part_id", req.Input.PartID),
			zap.Error(err))
		s.writeError(w, "ENGINE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, QuoteResponse{
		Result: result,
		Metadata: ResponseMetadata{
			RequestID:     requestID,
			EngineVersion: s.version,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "cnc-quote",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
