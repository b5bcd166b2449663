package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dredimura/surface"
	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/activation"
	"github.com/dredimura/surface/pkg/batch"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SnapshotURI addresses the surface snapshot resource.
const SnapshotURI = "surface://snapshot"

// Surface defines what the MCP server needs from surface.Surface.
type Surface interface {
	Snapshot() surface.Snapshot
	SetNormalized(id domain.ParameterID, v float64) error
	Apply(updates []domain.BatchUpdate, opts ...batch.ApplyOption) (*batch.Run, error)
	Recall(ctx context.Context, presetID string, opts ...batch.ApplyOption) (*batch.Run, error)
	Presets(ctx context.Context) ([]domain.Preset, error)
	Activation() *activation.Machine
}

// RunResponse reports a scheduled batch.
type RunResponse struct {
	Size int `json:"size" jsonschema_description:"Number of parameter writes scheduled"`
}

// ActivationResponse reports the activation machine after a request.
type ActivationResponse struct {
	Phase       domain.Phase `json:"phase" jsonschema_description:"Activation phase"`
	Interactive bool         `json:"interactive" jsonschema_description:"Whether the control surface accepts input"`
	Message     string       `json:"message,omitempty" jsonschema_description:"User-facing error message of the last failure"`
}

type setParameterArgs struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

type applyBatchArgs struct {
	Updates   string  `json:"updates"`
	StaggerMs float64 `json:"stagger_ms"`
}

type recallArgs struct {
	ID        string  `json:"id"`
	StaggerMs float64 `json:"stagger_ms"`
}

type activateArgs struct {
	Code string `json:"code"`
}

// Server exposes a Surface as an MCP server.
type Server struct {
	surface   Surface
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(surf Surface, opts ...Option) *Server {
	s := &Server{
		surface:   surf,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("surface-mcp", strings.TrimSpace(surface.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}

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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_snapshot
	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Get the current parameters and activation state of the control surface."),
		mcp.WithOutputSchema[surface.Snapshot](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (surface.Snapshot, error) {
		return s.surface.Snapshot(), nil
	}))

	// TOOL: set_parameter
	s.mcpServer.AddTool(mcp.NewTool("set_parameter",
		mcp.WithDescription("Write a normalized value (0..1) to a parameter. Booleans treat >= 0.5 as on."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Parameter ID, e.g. drive")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Normalized value"), mcp.Min(0), mcp.Max(1)),
		mcp.WithOutputSchema[surface.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleSetParameter))

	// TOOL: apply_batch
	s.mcpServer.AddTool(mcp.NewTool("apply_batch",
		mcp.WithDescription("Write several parameters in order, optionally staggered."),
		mcp.WithString("updates", mcp.Required(), mcp.Description(`JSON array of {"id": string, "value": number}`)),
		mcp.WithNumber("stagger_ms", mcp.Description("Delay between consecutive writes in milliseconds")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleApplyBatch))

	// TOOL: list_presets
	s.mcpServer.AddTool(mcp.NewTool("list_presets",
		mcp.WithDescription("List the preset library."),
	), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		presets, err := s.surface.Presets(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list presets failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(presets)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: recall_preset
	s.mcpServer.AddTool(mcp.NewTool("recall_preset",
		mcp.WithDescription("Apply a preset from the library."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Preset ID")),
		mcp.WithNumber("stagger_ms", mcp.Description("Delay between consecutive writes in milliseconds")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRecall))

	// TOOL: activate
	s.mcpServer.AddTool(mcp.NewTool("activate",
		mcp.WithDescription("Submit a license activation code. The result arrives asynchronously; poll get_snapshot."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Activation code")),
		mcp.WithOutputSchema[ActivationResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args activateArgs) (ActivationResponse, error) {
		if err := s.surface.Activation().Activate(args.Code); err != nil {
			return ActivationResponse{}, fmt.Errorf("activate failed: %w", err)
		}
		return s.activation(), nil
	}))

	// TOOL: deactivate
	s.mcpServer.AddTool(mcp.NewTool("deactivate",
		mcp.WithDescription("Release this machine's license activation."),
		mcp.WithOutputSchema[ActivationResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ActivationResponse, error) {
		if err := s.surface.Activation().Deactivate(); err != nil {
			return ActivationResponse{}, fmt.Errorf("deactivate failed: %w", err)
		}
		return s.activation(), nil
	}))
}

func (s *Server) handleSetParameter(ctx context.Context, _ mcp.CallToolRequest, args setParameterArgs) (surface.Snapshot, error) {
	if args.ID == "" {
		return surface.Snapshot{}, fmt.Errorf("id is required")
	}
	if err := s.surface.SetNormalized(domain.ParameterID(args.ID), args.Value); err != nil {
		s.logger.Debug("MCP set_parameter rejected", "param", args.ID, "err", err)
		return surface.Snapshot{}, fmt.Errorf("set %s failed: %w", args.ID, err)
	}
	return s.surface.Snapshot(), nil
}

func (s *Server) handleApplyBatch(ctx context.Context, _ mcp.CallToolRequest, args applyBatchArgs) (RunResponse, error) {
	var updates []domain.BatchUpdate
	if err := json.Unmarshal([]byte(args.Updates), &updates); err != nil {
		return RunResponse{}, fmt.Errorf("%w: updates: %v", domain.ErrMalformedPayload, err)
	}
	run, err := s.surface.Apply(updates, batch.WithStagger(stagger(args.StaggerMs)))
	if err != nil {
		return RunResponse{}, fmt.Errorf("apply failed: %w", err)
	}
	return RunResponse{Size: run.Size()}, nil
}

func (s *Server) handleRecall(ctx context.Context, _ mcp.CallToolRequest, args recallArgs) (RunResponse, error) {
	run, err := s.surface.Recall(ctx, args.ID, batch.WithStagger(stagger(args.StaggerMs)))
	if err != nil {
		return RunResponse{}, fmt.Errorf("recall failed: %w", err)
	}
	return RunResponse{Size: run.Size()}, nil
}

func (s *Server) activation() ActivationResponse {
	state := s.surface.Activation().State()
	return ActivationResponse{
		Phase:       state.Phase(),
		Interactive: state.Interactive(),
		Message:     state.LastError,
	}
}

func stagger(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (s *Server) registerResources() {
	// EXPOSE: surface://snapshot
	s.mcpServer.AddResource(mcp.NewResource(SnapshotURI, "Control Surface Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.surface.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SnapshotURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
