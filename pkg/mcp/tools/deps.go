// Package tools registers the MCP tools that expose the assistant, the schema
// snapshot and guarded queries to MCP clients.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

// Asker answers questions. *assistant.Service satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, history assistant.History, progress assistant.ProgressFunc) (*assistant.Answer, error)
}

// SchemaProvider serves the cached schema snapshot. *schema.Provider satisfies it.
type SchemaProvider interface {
	Get(ctx context.Context) (*schema.Snapshot, error)
	Refresh(ctx context.Context) (*schema.Snapshot, error)
}

// QueryRunner runs guarded read-only SQL. *warehouse.Executor satisfies it.
type QueryRunner interface {
	Run(ctx context.Context, q string) *warehouse.Result
}

// Pinger checks warehouse connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds what the tools call into. Nil members disable their tools,
// except Pinger which only drops the warehouse check from health.
type Deps struct {
	Assistant Asker
	Schema    SchemaProvider
	Runner    QueryRunner
	Pinger    Pinger
	Version   string
	Logger    *zap.Logger
}

// RegisterAll adds every tool deps can serve.
func RegisterAll(s *server.MCPServer, deps *Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	RegisterHealthTool(s, deps.Version, deps.Pinger)
	if deps.Assistant != nil {
		RegisterAskTool(s, deps)
	}
	if deps.Schema != nil {
		RegisterSchemaTools(s, deps)
	}
	if deps.Runner != nil {
		RegisterQueryTool(s, deps)
	}
}
