// Package mcp exposes sessions of a compiled tree as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/runner"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
)

// CatalogURI is the resource listing every action type and selector.
const CatalogURI = "shrub://catalog"

// Sessions is the part of session.Manager the server drives.
type Sessions interface {
	State(ctx context.Context, sessionID string) (any, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (any, error)
	Select(ctx context.Context, sessionID, name string, payload any) (any, error)
	Reset(ctx context.Context, sessionID string) (any, error)
}

// Catalog describes the compiled tree.
type Catalog interface {
	ActionTypes() []string
	SelectorNames() []string
	ActionPath(actionType string) (string, bool)
	PayloadSchema(actionType string) (schema.Schema, bool)
	Handles(actionType string) bool
	ToJSON(state any) ([]byte, error)
}

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	SessionID string   `json:"session_id" jsonschema_description:"The session the tool ran against"`
	State     any      `json:"state,omitempty" jsonschema_description:"The session state after the call"`
	Value     any      `json:"value,omitempty" jsonschema_description:"The selected value"`
	Changed   []string `json:"changed,omitempty" jsonschema_description:"Dotted paths the dispatch changed"`
	Ignored   bool     `json:"ignored,omitempty" jsonschema_description:"True when the action type is not part of the tree"`
}

// ActionInfo describes one action type.
type ActionInfo struct {
	Type    string            `json:"type"`
	Path    string            `json:"path"`
	Payload map[string]string `json:"payload,omitempty"`
}

// CatalogResponse lists the compiled names.
type CatalogResponse struct {
	Actions   []ActionInfo `json:"actions"`
	Selectors []string     `json:"selectors"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type dispatchArgs struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
}

type selectArgs struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Payload   string `json:"payload"`
}

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	sessions  Sessions
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, catalog Catalog, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("shrub-mcp", strings.TrimSpace(shrub.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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
	s.mcpServer.AddTool(mcp.NewTool("dispatch",
		mcp.WithDescription("Apply an action to a session. Use list_actions to discover action types and payloads."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to dispatch to")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Action type, e.g. TODOS_ADD")),
		mcp.WithString("payload", mcp.Description("JSON payload of the action (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the current state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to read")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleState))

	s.mcpServer.AddTool(mcp.NewTool("select",
		mcp.WithDescription("Run a named selector against a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to read")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Selector name")),
		mcp.WithString("payload", mcp.Description("JSON payload, e.g. the collection key (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Restore the initial state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to reset")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List every action type with its path and payload fields, and every selector."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.Catalog())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("catalog failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Compiled action types and selectors",
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.Catalog())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// Catalog lists the compiled action types and selectors.
func (s *Server) Catalog() CatalogResponse {
	types := s.catalog.ActionTypes()
	out := CatalogResponse{Actions: make([]ActionInfo, 0, len(types)), Selectors: s.catalog.SelectorNames()}
	for _, t := range types {
		info := ActionInfo{Type: t}
		info.Path, _ = s.catalog.ActionPath(t)
		if sch, ok := s.catalog.PayloadSchema(t); ok {
			info.Payload = sch.TypeMap()
		}
		out.Actions = append(out.Actions, info)
	}
	return out
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args dispatchArgs) (SessionResponse, error) {
	res := SessionResponse{SessionID: args.SessionID}
	if args.SessionID == "" || args.Type == "" {
		return res, fmt.Errorf("session_id and type are required")
	}
	payload, err := parsePayload(args.Payload)
	if err != nil {
		return res, err
	}

	prev, err := s.sessions.State(ctx, args.SessionID)
	if err != nil {
		return res, err
	}
	next, err := s.sessions.Dispatch(ctx, args.SessionID, domain.NewAction(args.Type, payload))
	if err != nil {
		s.logger.Debug("MCP dispatch failed", "session_id", args.SessionID, "type", args.Type, "err", err)
		return res, fmt.Errorf("dispatch failed: %w", err)
	}

	res.Ignored = !s.catalog.Handles(args.Type)
	if !res.Ignored {
		res.Changed = domain.Diff(prev, next)
	}
	res.State, err = s.plain(next)
	return res, err
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResponse, error) {
	res := SessionResponse{SessionID: args.SessionID}
	state, err := s.sessions.State(ctx, args.SessionID)
	if err != nil {
		return res, err
	}
	res.State, err = s.plain(state)
	return res, err
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args selectArgs) (SessionResponse, error) {
	res := SessionResponse{SessionID: args.SessionID}
	payload, err := parsePayload(args.Payload)
	if err != nil {
		return res, err
	}
	res.Value, err = s.sessions.Select(ctx, args.SessionID, args.Name, payload)
	if err != nil {
		return res, fmt.Errorf("select failed: %w", err)
	}
	return res, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResponse, error) {
	res := SessionResponse{SessionID: args.SessionID}
	state, err := s.sessions.Reset(ctx, args.SessionID)
	if err != nil {
		return res, err
	}
	res.State, err = s.plain(state)
	return res, err
}

// plain renders state through the tree's JSON encoding, so typed leaves
// look the same as over HTTP.
func (s *Server) plain(state any) (any, error) {
	data, err := s.catalog.ToJSON(state)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parsePayload(raw string) (any, error) {
	clean, err := runner.SanitizeInput(raw)
	if err != nil {
		return nil, fmt.Errorf("payload rejected: %w", err)
	}
	if strings.TrimSpace(clean) == "" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("payload is not JSON: %w", err)
	}
	return payload, nil
}
