// Package chi exposes the HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/domain"
	answeruc "github.com/campushelp/faqrag/internal/usecase/answer"
	healthuc "github.com/campushelp/faqrag/internal/usecase/health"
	indexeruc "github.com/campushelp/faqrag/internal/usecase/indexer"
)

// errorCode identifies an error response category.
type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeValidationFailed    errorCode = "validation_failed"
	codeUpstreamUnavailable errorCode = "upstream_unavailable"
	codeInternalError       errorCode = "internal_error"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// askRequest is the body of POST /api/v1/ask.
type askRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k"`
	UseLLM  *bool  `json:"use_llm"`
}

// rawMatchesResponse is the ask reply when synthesis is disabled.
type rawMatchesResponse struct {
	Matches      []domain.Match `json:"matches"`
	LLMProcessed bool           `json:"llm_processed"`
}

type buildResponse struct {
	Status  string                 `json:"status"`
	Indexed int                    `json:"indexed"`
	Failed  []indexeruc.FailedItem `json:"failed,omitempty"`
}

type syncResponse struct {
	Status  string                 `json:"status"`
	Deleted int                    `json:"deleted"`
	Added   int                    `json:"added"`
	Failed  []indexeruc.FailedItem `json:"failed,omitempty"`
}

// Server holds the HTTP handlers.
type Server struct {
	answers     *answeruc.Service
	indexer     *indexeruc.Service
	health      *healthuc.Service
	defaultTopK int
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	answers *answeruc.Service,
	indexer *indexeruc.Service,
	health *healthuc.Service,
	defaultTopK int,
	logger *zap.Logger,
) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Server{
		answers:     answers,
		indexer:     indexer,
		health:      health,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/ask", s.Ask)
	r.Post("/api/v1/build_index", s.BuildIndex)
	r.Post("/api/v1/sync", s.Sync)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ask handles POST /api/v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message is required")
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK < 1 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be >= 1")
		return
	}
	useLLM := req.UseLLM == nil || *req.UseLLM

	result, err := s.answers.Ask(r.Context(), req.Message, topK, useLLM)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if !result.Synthesized {
		writeJSON(w, http.StatusOK, rawMatchesResponse{
			Matches:      result.Matches,
			LLMProcessed: false,
		})
		return
	}

	writeJSON(w, http.StatusOK, result.Answer)
}

// BuildIndex handles POST /api/v1/build_index.
func (s *Server) BuildIndex(w http.ResponseWriter, r *http.Request) {
	result, err := s.indexer.Build(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse{
		Status:  "ok",
		Indexed: result.Indexed,
		Failed:  result.Failed,
	})
}

// Sync handles POST /api/v1/sync.
func (s *Server) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := s.indexer.Sync(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Status:  "ok",
		Deleted: result.Deleted,
		Added:   result.Added,
		Failed:  result.Failed,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrUpstreamUnavailable,
		domain.ErrRecordNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, codeValidationFailed, msg)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, codeUpstreamUnavailable, msg)
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
