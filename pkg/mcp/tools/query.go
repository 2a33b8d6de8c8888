package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/logging"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

type queryResult struct {
	SQL       string     `json:"sql"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	RowCount  int        `json:"row_count"`
	Truncated bool       `json:"truncated,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// RegisterQueryTool adds run_query. Every statement passes the same SQL guard
// the assistant uses, so only a single read-only SELECT is accepted.
func RegisterQueryTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"run_query",
		mcp.WithDescription(
			"Run one read-only SELECT statement against the warehouse and return the rows. "+
				"Writes, DDL and multiple statements are rejected. Results are capped at the configured row limit.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("A single SELECT statement in the warehouse dialect (see get_schema)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil || strings.TrimSpace(sqlText) == "" {
			return NewErrorResult("invalid_parameters", "sql parameter is required"), nil
		}

		res := deps.Runner.Run(ctx, sqlText)
		if res.Status == warehouse.StatusError {
			deps.Logger.Debug("run_query rejected or failed",
				zap.String("sql", logging.SanitizeQuery(sqlText)),
				zap.String("error", logging.SanitizeError(res.Err)))
			return NewErrorResultWithDetails(QueryErrorCode(res.Err), QueryErrorMessage(res.Err),
				map[string]any{"sql": res.SQL}), nil
		}

		out := queryResult{
			SQL:       res.SQL,
			Columns:   res.Columns,
			Rows:      make([][]string, 0, len(res.Rows)),
			RowCount:  len(res.Rows),
			Truncated: res.Truncated,
		}
		if res.Status == warehouse.StatusNoRows {
			out.Message = res.Render()
		}
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = warehouse.FormatValue(v)
			}
			out.Rows = append(out.Rows, cells)
		}
		return jsonResult(out)
	})
}
