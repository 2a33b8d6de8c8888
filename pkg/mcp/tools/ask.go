package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
)

type askResult struct {
	Answer  string           `json:"answer"`
	Intent  assistant.Intent `json:"intent"`
	Queries []askQuery       `json:"queries,omitempty"`
}

type askQuery struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
	Status   string `json:"status"`
}

// RegisterAskTool adds ask_question, which runs a question through the full
// assistant: intent routing, investigation and synthesis.
func RegisterAskTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"ask_question",
		mcp.WithDescription(
			"Ask the retail analytics assistant a question in plain English. "+
				"Data questions are answered by planning and running read-only SQL against the warehouse; "+
				"the response includes the final answer and the queries that were run.",
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question, e.g. 'Which store sold the most bananas last week?'"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return NewErrorResult("invalid_parameters", "question parameter is required"), nil
		}

		answer, err := deps.Assistant.Ask(ctx, question, nil, nil)
		switch {
		case errors.Is(err, apperrors.ErrInvalidRequest):
			return NewErrorResult("invalid_parameters", err.Error()), nil
		case llm.IsRateLimited(err):
			return NewErrorResult("rate_limited", "The language model is rate limited. Please try again shortly."), nil
		case err != nil:
			deps.Logger.Error("ask_question failed", zap.Error(err))
			return nil, fmt.Errorf("failed to answer question: %w", err)
		}

		res := askResult{Answer: answer.Answer, Intent: answer.Intent}
		if inv := answer.Investigation; inv != nil {
			for _, step := range inv.Steps {
				res.Queries = append(res.Queries, askQuery{
					Question: step.Question,
					SQL:      step.SQL,
					Status:   string(step.Status),
				})
			}
		}
		return jsonResult(res)
	})
}
