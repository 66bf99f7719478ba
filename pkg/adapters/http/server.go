package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/internal/logging"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Assistant defines what the HTTP server needs from the HSN assistant.
type Assistant interface {
	Tool(ctx context.Context, sessionID string, in domain.Input) (hsn.ToolResponse, error)
	Validate(ctx context.Context, in domain.Input) []domain.Result
	Screen(ctx context.Context, sessionID, message string) (hsn.ScreenResult, error)
	Table() *domain.Table
	Sessions() *session.Manager
}

// ValidateRequest is the body of POST /validate. HSNInputs stays untyped so a
// non-list payload is answered with INVALID_INPUT_TYPE rather than a 400.
type ValidateRequest struct {
	HSNInputs any    `json:"hsn_inputs"`
	SessionID string `json:"session_id,omitempty"`
}

// ScreenRequest is the body of POST /screen.
type ScreenRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	SessionId *string `form:"session_id,omitempty" json:"session_id,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	Validate(w http.ResponseWriter, r *http.Request)
	GetCode(w http.ResponseWriter, r *http.Request, code string)
	Screen(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, sessionID string)
	DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
}

// Server implements ServerInterface on top of an Assistant.
type Server struct {
	Assistant Assistant
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks are registered on the assistant.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.Streams = sm
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates a new HTTP handler for the assistant.
func NewHandler(assistant Assistant, opts ...Option) http.Handler {
	server := &Server{
		Assistant: assistant,
		Streams:   NewStreamManager(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			server.logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	handler := HandlerFromMux(server, r)
	return enableCORS(handler)
}

// HandlerFromMux registers the ServerInterface routes on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	w := &wrapper{handler: si}

	r.Post("/validate", si.Validate)
	r.Get("/codes/{code}", w.getCode)
	r.Post("/screen", si.Screen)
	r.Get("/sessions/{session_id}", w.getSession)
	r.Delete("/sessions/{session_id}", w.deleteSession)
	r.Get("/events", w.subscribeEvents)
	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	return r
}

// wrapper binds path and query parameters before calling the handler.
type wrapper struct {
	handler ServerInterface
}

func (w *wrapper) getCode(rw http.ResponseWriter, r *http.Request) {
	var code string
	if !bindPath(rw, r, "code", &code) {
		return
	}
	w.handler.GetCode(rw, r, code)
}

func (w *wrapper) getSession(rw http.ResponseWriter, r *http.Request) {
	var id string
	if !bindPath(rw, r, "session_id", &id) {
		return
	}
	w.handler.GetSession(rw, r, id)
}

func (w *wrapper) deleteSession(rw http.ResponseWriter, r *http.Request) {
	var id string
	if !bindPath(rw, r, "session_id", &id) {
		return
	}
	w.handler.DeleteSession(rw, r, id)
}

func (w *wrapper) subscribeEvents(rw http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &params.SessionId); err != nil {
		http.Error(rw, fmt.Sprintf("Invalid format for parameter session_id: %s", err), http.StatusBadRequest)
		return
	}
	w.handler.SubscribeEvents(rw, r, params)
}

func bindPath(rw http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		http.Error(rw, fmt.Sprintf("Invalid format for parameter %s: %s", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>HSN API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Validate: Invalid request body", "err", err)
		return
	}

	resp, err := s.Assistant.Tool(r.Context(), body.SessionID, domain.InputFromAny(body.HSNInputs))
	if err != nil {
		http.Error(w, fmt.Sprintf("Validate error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Validate failed", "session_id", body.SessionID, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetCode handles the GET /codes/{code} request.
func (s *Server) GetCode(w http.ResponseWriter, r *http.Request, code string) {
	results := s.Assistant.Validate(r.Context(), domain.Strings(code))
	s.writeJSON(w, http.StatusOK, results[0])
}

// Screen handles the POST /screen request.
func (s *Server) Screen(w http.ResponseWriter, r *http.Request) {
	var body ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Screen: Invalid request body", "err", err)
		return
	}

	res, err := s.Assistant.Screen(r.Context(), body.SessionID, body.Message)
	switch {
	case errors.Is(err, domain.ErrInputTooLarge):
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, domain.ErrInvalidUTF8):
		http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, fmt.Sprintf("Screen error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Screen failed", "session_id", body.SessionID, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// GetSession handles the GET /sessions/{session_id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := s.Assistant.Sessions().Load(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetSession failed", "session_id", sessionID, "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles the DELETE /sessions/{session_id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.Assistant.Sessions().Delete(r.Context(), sessionID); err != nil {
		http.Error(w, fmt.Sprintf("Session error: %v", err), http.StatusInternalServerError)
		s.logger.Error("DeleteSession failed", "session_id", sessionID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	codes := s.Assistant.Table().Len()
	if codes == 0 {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "codes": 0})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "codes": codes})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":         "hsn-http",
		"version":     strings.TrimSpace(hsn.Version),
		"api_version": apiVersion,
		"table":       s.Assistant.Table().Stats(),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topic := GlobalTopic
	if params.SessionId != nil {
		topic = *params.SessionId
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()
	s.logger.Info("SSE: Client subscribed", "topic", topic)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
