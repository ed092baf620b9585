// Package mcp exposes a session to MCP clients: every operator command is a
// tool and the record log is a resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/welllit/pkg/adapters/csv"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/ports"
	"github.com/aretw0/welllit/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	RecordsURI  = "welllit://records"
	SnapshotURI = "welllit://snapshot"
)

// ToolResponse is the structured output of the session tools.
type ToolResponse struct {
	Result   domain.Result    `json:"result" jsonschema_description:"Outcome of the operation"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty" jsonschema_description:"Cursor after the operation, absent when no protocol is loaded"`
	Warning  string           `json:"warning,omitempty" jsonschema_description:"Record sink failure; the outcome still stands"`
}

// StatusResponse is the structured output of get_status.
type StatusResponse struct {
	Active      bool                `json:"active"`
	Run         domain.Run          `json:"run"`
	Snapshot    *domain.Snapshot    `json:"snapshot,omitempty"`
	Plates      []domain.PlateGroup `json:"plates,omitempty"`
	Uncompleted int                 `json:"uncompleted"`
	Completed   int                 `json:"completed"`
	Skipped     int                 `json:"skipped"`
	Failed      int                 `json:"failed"`
}

type loadArgs struct {
	Path string `json:"path"`
	CSV  string `json:"csv"`
	Name string `json:"name"`
}

type commandArgs struct {
	Command string `json:"command"`
}

type emptyArgs struct{}

// Server wraps a Session and exposes it as an MCP server.
type Server struct {
	session   *session.Session
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	version string
	logger  *slog.Logger
}

func WithVersion(v string) Option {
	return func(o *serverOptions) {
		o.version = v
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sess *session.Session, opts ...Option) *Server {
	o := serverOptions{version: "dev", logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		session:   sess,
		mcpServer: server.NewMCPServer("welllit-mcp", strings.TrimSpace(o.version)),
		logger:    o.logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Handle processes a single JSON-RPC message. Transports other than the
// bundled ones can drive the server through it.
func (s *Server) Handle(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ServeStdio serves on the given streams until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
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

		s.logger.Info("shutting down MCP server")
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

func commandNames() []string {
	names := make([]string, len(domain.Commands))
	for i, c := range domain.Commands {
		names[i] = string(c)
	}
	return names
}

func (s *Server) registerTools() {
	loadTool := mcp.NewTool("load_table",
		mcp.WithDescription("Load a transfer table. Pass either a file path readable by the server or the CSV text itself."),
		mcp.WithString("path", mcp.Description("Path of a CSV transfer table")),
		mcp.WithString("csv", mcp.Description("CSV content: destination plate line, header line, then PlateName,SourceWell,DestWell rows")),
		mcp.WithString("name", mcp.Description("Source name used for the record log when csv is given")),
		mcp.WithOutputSchema[ToolResponse](),
	)
	s.mcpServer.AddTool(loadTool, mcp.NewStructuredToolHandler(s.handleLoad))

	commandTool := mcp.NewTool("run_command",
		mcp.WithDescription("Run an operator command against the loaded protocol."),
		mcp.WithString("command", mcp.Required(), mcp.Enum(commandNames()...), mcp.Description("Command name")),
		mcp.WithOutputSchema[ToolResponse](),
	)
	s.mcpServer.AddTool(commandTool, mcp.NewStructuredToolHandler(s.handleCommand))

	statusTool := mcp.NewTool("get_status",
		mcp.WithDescription("Report the cursor, the plate grouping and the status counts."),
		mcp.WithOutputSchema[StatusResponse](),
	)
	s.mcpServer.AddTool(statusTool, mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("get_records",
		mcp.WithDescription("Get the transfer record log of the current run."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.session.Active() {
			return mcp.NewToolResultError(domain.ErrNoProtocol.Error()), nil
		}
		jsonBytes, err := s.recordsJSON()
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) respond(res domain.Result, err error) ToolResponse {
	resp := ToolResponse{Result: res}
	if snap, ok := s.session.Snapshot(); ok {
		resp.Snapshot = &snap
	}
	if err != nil {
		s.logger.Warn("record sink failure", "err", err)
		resp.Warning = err.Error()
	}
	return resp
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args loadArgs) (ToolResponse, error) {
	var reader ports.TableReader
	switch {
	case args.CSV != "":
		name := args.Name
		if name == "" {
			name = "mcp.csv"
		}
		reader = csv.FromReader(strings.NewReader(args.CSV), name)
	case args.Path != "":
		reader = csv.NewReader(args.Path)
	default:
		return ToolResponse{}, errors.New("either path or csv is required")
	}

	res, err := s.session.LoadFrom(ctx, reader)
	if err != nil && res.Kind == "" {
		return ToolResponse{}, err
	}
	return s.respond(res, err), nil
}

func (s *Server) handleCommand(ctx context.Context, request mcp.CallToolRequest, args commandArgs) (ToolResponse, error) {
	if args.Command == "" {
		return ToolResponse{}, errors.New("command is required")
	}
	res, err := s.session.Execute(ctx, domain.Command(args.Command))
	return s.respond(res, err), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, _ emptyArgs) (StatusResponse, error) {
	resp := StatusResponse{
		Active: s.session.Active(),
		Run:    s.session.Run(),
		Plates: s.session.Plates(),
	}
	if snap, ok := s.session.Snapshot(); ok {
		resp.Snapshot = &snap
	}
	parts := s.session.Partitions()
	resp.Uncompleted = len(parts.Uncompleted)
	resp.Completed = len(parts.Completed)
	resp.Skipped = len(parts.Skipped)
	resp.Failed = len(parts.Failed)
	return resp, nil
}

func (s *Server) recordsJSON() ([]byte, error) {
	records := s.session.Records()
	if records == nil {
		records = []domain.Record{}
	}
	return json.Marshal(map[string]any{
		"run":     s.session.Run(),
		"records": records,
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RecordsURI, "Transfer record log",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := s.recordsJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode records: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RecordsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(SnapshotURI, "Protocol cursor",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, ok := s.session.Snapshot()
		if !ok {
			return nil, domain.ErrNoProtocol
		}
		jsonBytes, err := json.Marshal(snap)
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
