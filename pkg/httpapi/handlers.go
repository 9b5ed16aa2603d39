package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/aitools"
)

// Manifest output formats.
const (
	ProviderRaw       = "raw"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// apiError is an error produced by the HTTP layer itself.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string   { return e.msg }
func (e *apiError) StatusCode() int { return e.status }

func badRequest(format string, args ...any) error {
	return &apiError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// ToolList is the body of GET /api/ai/tools.
type ToolList struct {
	Mode  aitools.Mode       `json:"mode"`
	Tools []aitools.ToolInfo `json:"tools"`
}

// ManifestResponse is the body of GET /api/ai/tools/manifest.
type ManifestResponse struct {
	Provider string `json:"provider"`
	Tools    any    `json:"tools"`
	Dropped  int    `json:"dropped"`
}

// ExecuteResponse is the body of a successful tool execution.
type ExecuteResponse struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"mode":   s.registry.Mode(),
	}
	status := http.StatusOK
	if s.cfg.Ping != nil {
		if err := s.cfg.Ping(r.Context()); err != nil {
			body["status"] = "unavailable"
			status = http.StatusServiceUnavailable
			logger := tracing.LoggerFromContext(r.Context(), s.logger)
			logger.Warn().Err(err).Msg("Health check failed")
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.listTools())
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.manifest(r.Context(), callerFrom(r.Context()), query.Get("hint"), query.Get("provider"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger := tracing.LoggerFromContext(r.Context(), s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, &apiError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"})
		return
	}

	var args any
	if len(strings.TrimSpace(string(body))) > 0 {
		if !json.Valid(body) {
			writeError(w, badRequest("request body is not valid JSON"))
			return
		}
		args = json.RawMessage(body)
	}

	result, err := s.execute(r.Context(), name, args, callerFrom(r.Context()))
	if err != nil {
		if statusOf(err) >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("tool", name).Msg("Tool execution failed")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{Tool: name, Result: result})
}

func (s *Server) listTools() ToolList {
	mode := s.registry.Mode()
	return ToolList{Mode: mode, Tools: s.registry.ListTools(mode)}
}

// manifest builds the caller's manifest in the requested provider format.
func (s *Server) manifest(ctx context.Context, ec aitools.ExecutionContext, hint, provider string) (*ManifestResponse, error) {
	if provider == "" {
		provider = ProviderRaw
	}

	var build func(*aitools.Manifest) any
	switch strings.ToLower(provider) {
	case ProviderRaw:
		build = func(m *aitools.Manifest) any { return m.Entries }
	case ProviderOpenAI:
		build = func(m *aitools.Manifest) any { return aitools.OpenAITools(m) }
	case ProviderAnthropic:
		build = func(m *aitools.Manifest) any { return aitools.AnthropicTools(m) }
	default:
		return nil, badRequest("unknown provider %q", provider)
	}

	m := s.registry.BuildManifest(ctx, ec, hint)
	return &ManifestResponse{Provider: strings.ToLower(provider), Tools: build(m), Dropped: m.Dropped}, nil
}

// execute is the single call path of both surfaces.
func (s *Server) execute(ctx context.Context, name string, args any, ec aitools.ExecutionContext) (any, error) {
	s.inFlightReqs.Add(1)
	defer s.inFlightReqs.Done()

	return s.registry.Executor().Execute(ctx, name, args, ec)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError reports err with its status. Messages of unexpected internal
// errors are not exposed.
func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	detail := errorDetail{Code: errorCode(err, status), Message: err.Error()}

	var apiErr *aitools.Error
	var coded interface{ StatusCode() int }
	if status == http.StatusInternalServerError && !errors.As(err, &apiErr) && !errors.As(err, &coded) {
		detail.Message = "internal error"
	}

	writeJSON(w, status, errorBody{Error: detail})
}

func errorCode(err error, status int) string {
	switch {
	case errors.Is(err, aitools.ErrNotFound):
		return "not_found"
	case errors.Is(err, aitools.ErrForbidden):
		return "forbidden"
	case errors.Is(err, aitools.ErrValidation):
		return "validation_error"
	}
	switch status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusInternalServerError:
		return "internal"
	}
	return "upstream_error"
}
