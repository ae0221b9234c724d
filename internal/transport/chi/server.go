package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/domain"
	"github.com/bvm-labs/catalogchat/internal/logger"
	"github.com/bvm-labs/catalogchat/internal/version"
)

// ErrorCode identifies an error class in API responses.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeInvalidCondition ErrorCode = "invalid_condition"
	CodeCatalogError     ErrorCode = "catalog_error"
	CodeModelError       ErrorCode = "model_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply body of POST /chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Replier answers one chat message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API.
type Server struct {
	chat          Replier
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat Replier, logger *zap.Logger) *Server {
	s := &Server{chat: chat, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCondition, http.StatusBadRequest, CodeInvalidCondition),
		sentinelHandler(domain.ErrFetchFailed, http.StatusBadGateway, CodeCatalogError),
		sentinelHandler(domain.ErrDecodeFailed, http.StatusBadGateway, CodeCatalogError),
		sentinelHandler(domain.ErrInterpreterError, http.StatusBadGateway, CodeModelError),
		sentinelHandler(domain.ErrSummarizerError, http.StatusBadGateway, CodeModelError),
	}
	return s
}

// Routes mounts the API on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/chat", s.Chat)
	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reply, err := s.chat.Reply(r.Context(), req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// The request-scoped logger carries the request id; fall back to the
	// server logger when no middleware stored one.
	reqLogger := s.logger
	if ctxLogger, ok := logger.TryFromContext(r.Context()); ok {
		reqLogger = ctxLogger
	}
	reqLogger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	reqLogger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCondition,
		domain.ErrFetchFailed,
		domain.ErrDecodeFailed,
		domain.ErrInterpreterError,
		domain.ErrSummarizerError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
