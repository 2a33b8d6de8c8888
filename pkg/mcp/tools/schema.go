package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

type schemaResult struct {
	Dialect    string         `json:"dialect"`
	TableCount int            `json:"table_count"`
	Schema     string         `json:"schema"`
	Tables     []schema.Table `json:"tables,omitempty"`
}

func newSchemaResult(snapshot *schema.Snapshot, includeColumns bool) schemaResult {
	res := schemaResult{
		Dialect:    snapshot.Dialect,
		TableCount: len(snapshot.Tables),
		Schema:     snapshot.Text,
	}
	if includeColumns {
		res.Tables = snapshot.Tables
	}
	return res
}

// RegisterSchemaTools registers get_schema and refresh_schema.
func RegisterSchemaTools(s *server.MCPServer, deps *Deps) {
	registerGetSchemaTool(s, deps)
	registerRefreshSchemaTool(s, deps)
}

func registerGetSchemaTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_schema",
		mcp.WithDescription(
			"Get the warehouse schema the assistant writes SQL against: the SQL dialect and every table with its columns. "+
				"Use this before run_query to get table and column names right.",
		),
		mcp.WithBoolean(
			"include_columns",
			mcp.Description("If true, also return tables and columns as structured JSON (default: false)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snapshot, err := deps.Schema.Get(ctx)
		if err != nil {
			return schemaError(deps.Logger, err)
		}
		return jsonResult(newSchemaResult(snapshot, req.GetBool("include_columns", false)))
	})
}

func registerRefreshSchemaTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"refresh_schema",
		mcp.WithDescription(
			"Reload the warehouse schema after tables or columns changed. "+
				"The previous schema stays in use if the reload fails.",
		),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snapshot, err := deps.Schema.Refresh(ctx)
		if err != nil {
			return schemaError(deps.Logger, err)
		}
		deps.Logger.Info("Schema refreshed via MCP", zap.Int("tables", len(snapshot.Tables)))
		return jsonResult(newSchemaResult(snapshot, false))
	})
}

func schemaError(logger *zap.Logger, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, apperrors.ErrSchemaUnavailable) {
		return NewErrorResult("schema_unavailable", err.Error()), nil
	}
	logger.Error("Schema tool failed", zap.Error(err))
	return nil, fmt.Errorf("failed to load schema: %w", err)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
