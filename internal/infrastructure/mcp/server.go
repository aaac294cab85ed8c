// Package mcp exposes beacon's projection store to MCP clients.
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/beaconhq/beacon/internal/infrastructure/storage"
	"github.com/beaconhq/beacon/pkg/domain/projection"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Server wraps an MCP server over the projection store and the on-disk
// task context repository.
type Server struct {
	mcpServer *mcp.Server
	store     *storage.MemoryStore
	contexts  *storage.ContextRepository
}

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted — only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer builds the beacon MCP server over the given store. The contexts
// repository is optional; without it the context tools report an error.
func NewServer(store *storage.MemoryStore, contexts *storage.ContextRepository) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("projection store is required")
	}

	info := mcp.ServerInfo{
		Name:    "beacon",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Beacon MCP Server"),
			mcp.WithDescription("Beacon derives normalized execution status from task context documents and exposes it to MCP clients."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to read execution status, list executions per project, and project raw task context documents."),
		),
		store:    store,
		contexts: contexts,
	}

	s.registerTools()
	return s, nil
}

type GetStatusArgs struct {
	ExecutionID string `json:"execution_id" jsonschema:"description=The execution to look up"`
}

type ListExecutionsArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=Optional project filter; empty lists every execution"`
}

type ProjectContextArgs struct {
	ExecutionID string         `json:"execution_id" jsonschema:"description=The execution the document belongs to"`
	ProjectID   string         `json:"project_id" jsonschema:"description=Optional project identifier"`
	TaskContext map[string]any `json:"task_context" jsonschema:"description=The raw task context document to project"`
}

func (s *Server) registerTools() {
	// Tool: beacon_get_status
	s.mcpServer.Tool("beacon_get_status").
		Description("Get the current normalized status projection for an execution").
		Handler(s.handleGetStatus)

	// Tool: beacon_list_executions
	s.mcpServer.Tool("beacon_list_executions").
		Description("List stored status projections, optionally filtered by project").
		Handler(s.handleListExecutions)

	// Tool: beacon_project_context
	s.mcpServer.Tool("beacon_project_context").
		Description("Derive a status projection from a raw task context document without storing it").
		Handler(s.handleProjectContext)

	// Tool: beacon_load_context
	s.mcpServer.Tool("beacon_load_context").
		Description("Load the persisted raw task context document for an execution").
		Handler(s.handleLoadContext)
}

func (s *Server) handleGetStatus(ctx context.Context, args GetStatusArgs) (any, error) {
	rec, ok := s.store.Get(args.ExecutionID)
	if !ok {
		return nil, mcpErr("No status stored for this execution. Submit a task context first.")
	}
	return rec.Projection, nil
}

func (s *Server) handleListExecutions(ctx context.Context, args ListExecutionsArgs) (any, error) {
	var records []storage.Record
	if args.ProjectID != "" {
		records = s.store.ListByProject(args.ProjectID)
	} else {
		records = s.store.List()
	}
	if len(records) == 0 {
		return "No executions stored.", nil
	}
	projections := make([]*projection.StatusProjection, 0, len(records))
	for _, rec := range records {
		projections = append(projections, rec.Projection)
	}
	return projections, nil
}

func (s *Server) handleProjectContext(ctx context.Context, args ProjectContextArgs) (any, error) {
	if args.ExecutionID == "" {
		return nil, mcpErr("execution_id is required.")
	}
	p, err := projection.FromTaskContext(args.TaskContext, args.ExecutionID, args.ProjectID)
	if err != nil {
		return nil, mcpErr("The task context document must be a JSON object.")
	}
	return p, nil
}

func (s *Server) handleLoadContext(ctx context.Context, args GetStatusArgs) (any, error) {
	if s.contexts == nil {
		return nil, mcpErr("Context persistence is disabled on this server.")
	}
	doc, err := s.contexts.LoadContext(args.ExecutionID)
	if err != nil {
		return nil, mcpErr("Failed to load the task context. Check the execution id.")
	}
	return doc, nil
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
