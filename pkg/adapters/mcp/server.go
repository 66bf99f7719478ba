package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/internal/logging"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/persona"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Names under which the assistant is published.
const (
	LookupToolName = "hsn_lookup"
	StatsURI       = "hsn://table/stats"
	PromptName     = "hsn_assistant"
)

// Assistant defines what the MCP server needs from the HSN assistant.
type Assistant interface {
	Tool(ctx context.Context, sessionID string, in domain.Input) (hsn.ToolResponse, error)
	Validate(ctx context.Context, in domain.Input) []domain.Result
	Table() *domain.Table
	Persona() persona.Persona
}

// ValidateArgs are the arguments of the validation tool. HSNInputs stays
// untyped so a scalar sent by a confused client still gets a structured
// INVALID_INPUT_TYPE answer.
type ValidateArgs struct {
	HSNInputs any    `json:"hsn_inputs"`
	SessionID string `json:"session_id,omitempty"`
}

// LookupArgs are the arguments of the single-code lookup tool.
type LookupArgs struct {
	Code string `json:"code"`
}

// Server wraps the Assistant and exposes it as an MCP Server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(assistant Assistant, opts ...Option) *Server {
	s := &Server{
		assistant: assistant,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("hsn-mcp", strings.TrimSpace(hsn.Version),
		server.WithInstructions(assistant.Persona().Instruction),
	)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool(domain.ToolName,
		mcp.WithDescription("Validates a list of HSN codes against the master data. "+
			"Each code must be a string of 2, 4, 6 or 8 digits. Returns one result per input, in order, "+
			"or a guardrail verdict listing codes to retry with."),
		mcp.WithArray("hsn_inputs",
			mcp.Required(),
			mcp.Description("HSN codes to validate, e.g. [\"0101\", \"84713000\"]"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("session_id", mcp.Description("Conversation ID used to store the last result (optional)")),
		mcp.WithOutputSchema[hsn.ToolResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	lookupTool := mcp.NewTool(LookupToolName,
		mcp.WithDescription("Looks up a single HSN code and returns its description or the closest known parent."),
		mcp.WithString("code", mcp.Required(), mcp.Description("HSN code")),
		mcp.WithOutputSchema[domain.Result](),
	)
	s.mcpServer.AddTool(lookupTool, mcp.NewStructuredToolHandler(s.handleLookup))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (hsn.ToolResponse, error) {
	in := domain.InputFromAny(args.HSNInputs)
	resp, err := s.assistant.Tool(ctx, args.SessionID, in)
	if err != nil {
		s.logger.Error("MCP validation failed", "session_id", args.SessionID, "err", err)
		return hsn.ToolResponse{}, fmt.Errorf("validation failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest, args LookupArgs) (domain.Result, error) {
	results := s.assistant.Validate(ctx, domain.Strings(args.Code))
	if len(results) != 1 {
		return domain.Result{}, fmt.Errorf("unexpected result count %d", len(results))
	}
	return results[0], nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StatsURI, "HSN Table Statistics",
		mcp.WithResourceDescription("Size and hierarchy breakdown of the active reference table."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.assistant.Table().Stats())
		if err != nil {
			return nil, fmt.Errorf("failed to encode stats: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StatsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) registerPrompts() {
	p := s.assistant.Persona()
	s.mcpServer.AddPrompt(mcp.NewPrompt(PromptName,
		mcp.WithPromptDescription(p.Description),
		mcp.WithArgument("message", mcp.ArgumentDescription("The user's request, e.g. \"is 8471 valid?\"")),
	), s.handlePrompt)
}

func (s *Server) handlePrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	p := s.assistant.Persona()
	messages := []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(p.Prompt())),
	}
	if msg := strings.TrimSpace(request.Params.Arguments["message"]); msg != "" {
		messages = append(messages, mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(msg)))
	}
	return mcp.NewGetPromptResult(p.Description, messages), nil
}
