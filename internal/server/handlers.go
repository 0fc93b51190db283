package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"growthkit/internal/apperr"
	"growthkit/internal/core"
	"growthkit/internal/logger"
	"growthkit/internal/prompts"
	"growthkit/internal/ratelimit"
	"growthkit/internal/request"
)

// maxRequestBody caps generation payloads; page_content for website research
// is the largest expected field.
const maxRequestBody = 1 << 20

// RateLimitMeta is the quota metadata attached to generation responses.
type RateLimitMeta struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// GenerateResponse is returned for simple (non-research) actions.
type GenerateResponse struct {
	Result    string        `json:"result"`
	RateLimit RateLimitMeta `json:"rate_limit"`
}

// ResearchResponse is returned for the research action.
type ResearchResponse struct {
	ReportID          string        `json:"report_id"`
	Report            string        `json:"report"`
	Summary           string        `json:"summary"`
	ProcessingSeconds float64       `json:"processing_time_seconds"`
	RateLimit         RateLimitMeta `json:"rate_limit"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	ResetAt   *time.Time        `json:"reset_at,omitempty"`
	RateLimit *RateLimitMeta    `json:"rate_limit,omitempty"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatusResponse is the /api/status body.
type StatusResponse struct {
	Version            string `json:"version"`
	Uptime             string `json:"uptime"`
	ProviderConfigured bool   `json:"provider_configured"`
	DatabaseConnected  bool   `json:"database_connected"`
}

// ReportListResponse wraps the report list.
type ReportListResponse struct {
	Reports []core.Report `json:"reports"`
	Total   int           `json:"total"`
}

var serverStartTime = time.Now()

// handleGenerate handles POST /api/generate. Flow: validate, resolve caller,
// rate limit, compose, generate; research additionally runs the durable
// report lifecycle.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	// Validation happens before any rate-limit or provider cost.
	validated, err := request.Decode(body)
	if err != nil {
		s.respondAppError(w, err, nil)
		return
	}

	// An unconfigured provider rejects synchronously, before any quota is
	// consumed or record created.
	if s.generator == nil {
		s.respondAppError(w, apperr.ErrNotConfigured, nil)
		return
	}

	identifier := callerIdentifier(r)
	quota := s.limiter.Allow(identifier)
	s.setRateLimitHeaders(w, quota)
	meta := rateLimitMeta(quota)

	if !quota.Allowed {
		s.log.Warn("Rate limit exceeded", "identifier", identifier, "action", validated.Action)
		s.respondJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:     fmt.Sprintf("Rate limit exceeded. Try again in %s.", humanizeUntil(quota.ResetAt)),
			ResetAt:   &quota.ResetAt,
			RateLimit: &meta,
		})
		return
	}

	if validated.Action == core.ActionResearch {
		s.generateResearch(w, r, validated, meta)
		return
	}

	bundle := prompts.Compose(validated)
	result, err := s.generator.Generate(r.Context(), bundle.Prompt, bundle.SystemPrompt, bundle.Options)
	if err != nil {
		logger.Error("Generation failed", err, "action", validated.Action, "identifier", identifier)
		s.respondAppError(w, err, &meta)
		return
	}

	s.respondJSON(w, http.StatusOK, GenerateResponse{Result: result, RateLimit: meta})
}

// generateResearch runs the durable report lifecycle and returns the record
// inline so connected callers get an immediate answer while disconnected
// callers can retrieve it later by id.
func (s *Server) generateResearch(w http.ResponseWriter, r *http.Request, validated *request.Validated, meta RateLimitMeta) {
	report, err := s.manager.Run(r.Context(), *validated.Research)
	if err != nil {
		logger.Error("Research report failed", err, "report_id", reportID(report))
		s.respondAppError(w, err, &meta)
		return
	}

	s.respondJSON(w, http.StatusOK, ResearchResponse{
		ReportID:          report.ID,
		Report:            report.Content,
		Summary:           report.Summary,
		ProcessingSeconds: report.ProcessingSeconds,
		RateLimit:         meta,
	})
}

// handleListReports handles GET /api/reports.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	researchType := core.ResearchType(r.URL.Query().Get("type"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	list, err := s.db.List(r.Context(), researchType, limit)
	if err != nil {
		logger.Error("Failed to list reports", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	s.respondJSON(w, http.StatusOK, ReportListResponse{Reports: list, Total: len(list)})
}

// handleGetReport handles GET /api/reports/{id}.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.db.Get(r.Context(), id)
	if err != nil {
		s.respondAppError(w, err, nil)
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// handleDeleteReport handles DELETE /api/reports/{id}.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.db.Delete(r.Context(), id); err != nil {
		s.respondAppError(w, err, nil)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}
	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{
		Version:            "v1.2.0",
		Uptime:             time.Since(serverStartTime).Round(time.Second).String(),
		ProviderConfigured: s.generator != nil,
		DatabaseConnected:  s.db.Ping(r.Context()) == nil,
	})
}

// respondAppError maps pipeline error kinds to HTTP statuses in one place.
func (s *Server) respondAppError(w http.ResponseWriter, err error, meta *RateLimitMeta) {
	if ve, ok := apperr.AsValidation(err); ok {
		s.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Fields: ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotConfigured):
		s.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:     "AI provider is not configured",
			RateLimit: meta,
		})
	case errors.Is(err, apperr.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, apperr.ErrProvider):
		s.respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:     err.Error(),
			RateLimit: meta,
		})
	default:
		logger.Error("Unhandled error", err)
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, quota ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(quota.ResetAt.Unix(), 10))
}

func rateLimitMeta(quota ratelimit.Result) RateLimitMeta {
	return RateLimitMeta{
		Limit:     quota.Limit,
		Remaining: quota.Remaining,
		ResetAt:   quota.ResetAt,
	}
}

// humanizeUntil renders the wait until t for humans, e.g. "4 minutes".
func humanizeUntil(t time.Time) string {
	remaining := time.Until(t)
	if remaining <= 0 {
		return "a moment"
	}
	if remaining < time.Minute {
		seconds := int(remaining.Round(time.Second).Seconds())
		if seconds <= 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func reportID(report *core.Report) string {
	if report == nil {
		return ""
	}
	return report.ID
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", err)
	}
}

// respondError writes a bare error message.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
