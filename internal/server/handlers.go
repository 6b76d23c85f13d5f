package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/logging"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/scoring"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxRequestBytes leaves room for JSON escaping around a maximum-size document.
const maxRequestBytes = 2*ingestion.MaxDocumentBytes + 4096

// AnalyzeRequest is the request body for POST /analyze
type AnalyzeRequest struct {
	// Text is required but may be empty.
	Text *string `json:"text" validate:"required"`
	// Persist overrides the server default for this request.
	Persist *bool `json:"persist,omitempty"`
}

// AnalyzeResponse is the response body for POST /analyze
type AnalyzeResponse struct {
	ID string `json:"id,omitempty"`
	types.AnalysisResult
	FeatureSource string              `json:"feature_source"`
	Ingestion     *ingestion.Metadata `json:"ingestion,omitempty"`
}

// ScoreRequest is the request body for POST /score
type ScoreRequest struct {
	Features map[string]any `json:"features" validate:"required"`
}

// CatalogResponse is the response body for GET /catalog
type CatalogResponse struct {
	Entries []types.CatalogEntry `json:"entries"`
	Count   int                  `json:"count"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ingestion.ErrTooLarge
		}
		return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// handleAnalyze handles POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	text, meta := ingestion.NormalizeText(*req.Text)
	if len(text) > ingestion.MaxDocumentBytes {
		s.writeError(w, r, ingestion.ErrTooLarge)
		return
	}
	meta.Source = "request"

	report, err := s.analyzer.Analyze(r.Context(), text)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("analysis failed: %w", err))
		return
	}

	resp := AnalyzeResponse{
		AnalysisResult: report.AnalysisResult,
		FeatureSource:  report.FeatureSource,
	}
	if meta.Changed() {
		resp.Ingestion = meta
	}

	persist := s.persist
	if req.Persist != nil {
		persist = *req.Persist && s.results != nil
	}
	if persist {
		id, err := s.results.SaveAnalysis(r.Context(), text, &report.AnalysisResult)
		if err != nil {
			// The analysis itself succeeded; return it without an id.
			s.logger.Error("failed to persist analysis",
				zap.String(logging.FieldRequestID, middleware.RequestID(r.Context())),
				zap.String(logging.FieldFingerprint, db.Fingerprint(text)),
				zap.Error(err))
		} else {
			resp.ID = id.String()
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetAnalysis handles GET /analyses/{id}
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.writeError(w, r, &ErrUnavailable{Feature: "result storage"})
		return
	}
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	rec, err := s.results.GetAnalysis(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "analysis", ID: raw})
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleScore handles POST /score
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	features, err := scoring.FeaturesFromMap(req.Features)
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "features", Message: err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.analyzer.Calculator().Score(features))
}

// handleListCatalog handles GET /catalog
func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	entries := s.catalog.Entries()
	s.jsonResponse(w, http.StatusOK, CatalogResponse{Entries: entries, Count: len(entries)})
}

// handleGetCatalogEntry handles GET /catalog/{code}. Legacy codes resolve to their
// canonical entry.
func (s *Server) handleGetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	entry, ok := s.catalog.Lookup(code)
	if !ok {
		s.writeError(w, r, &ErrNotFound{Resource: "issue code", ID: code})
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleRefresh handles POST /refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.refresh(r.Context(), true)
	if err != nil {
		s.logger.Warn("refresh failed", zap.Error(err))
		s.jsonResponse(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"result": res,
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version := rules.DefaultsVersion
	if s.rules != nil {
		version = s.rules.Version()
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"rules_version": version,
	})
}
