package tools

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

func TestAskTool(t *testing.T) {
	asker := &fakeAsker{answer: &assistant.Answer{
		Answer: "Harbor Fresh sold the most bananas.",
		Intent: assistant.IntentDataQuery,
		Investigation: &assistant.Investigation{
			Steps: []assistant.Step{
				{Index: 1, Question: "Banana units by store", SQL: "SELECT 1", Status: warehouse.StatusRows},
			},
		},
	}}
	s := newTestServer(&Deps{Assistant: asker})

	var res askResult
	decodeText(t, callTool(t, s, "ask_question", map[string]any{"question": "Who sold the most bananas?"}), &res)

	assert.Equal(t, "Who sold the most bananas?", asker.got)
	assert.Equal(t, "Harbor Fresh sold the most bananas.", res.Answer)
	assert.Equal(t, assistant.IntentDataQuery, res.Intent)
	assert.Equal(t, []askQuery{{Question: "Banana units by store", SQL: "SELECT 1", Status: "rows"}}, res.Queries)
}

func TestAskTool_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		err      error
		wantCode string
	}{
		{"missing question", map[string]any{}, nil, "invalid_parameters"},
		{"blank question", map[string]any{"question": "  "}, nil, "invalid_parameters"},
		{"invalid request", map[string]any{"question": "q"}, fmt.Errorf("%w: too long", apperrors.ErrInvalidRequest), "invalid_parameters"},
		{"rate limited", map[string]any{"question": "q"}, llm.NewError(llm.ErrorTypeRateLimit, "429", true, nil), "rate_limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&Deps{Assistant: &fakeAsker{err: tt.err}})
			resp := callTool(t, s, "ask_question", tt.args)

			var errResp ErrorResponse
			decodeText(t, resp, &errResp)
			assert.True(t, resp.Result.IsError)
			assert.Equal(t, tt.wantCode, errResp.Code)
		})
	}
}

func TestAskTool_InternalError(t *testing.T) {
	s := newTestServer(&Deps{Assistant: &fakeAsker{err: errors.New("model unreachable")}})
	resp := callTool(t, s, "ask_question", map[string]any{"question": "q"})

	require.NotNil(t, resp.Error, "infrastructure failures surface as protocol errors")
	assert.Contains(t, resp.Error.Message, "model unreachable")
}
