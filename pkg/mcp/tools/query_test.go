package tools

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

func TestRunQueryTool(t *testing.T) {
	runner := &fakeRunner{result: &warehouse.Result{
		SQL:     "SELECT STORE_NAME, SUM(NET_SALES_AMT) FROM FACT_SALES_DAILY",
		Status:  warehouse.StatusRows,
		Columns: []string{"STORE_NAME", "REVENUE"},
		Rows: [][]any{
			{"Harbor Fresh", 1080.5},
			{"Downtown Market", nil},
		},
		Truncated: true,
		Elapsed:   time.Millisecond,
	}}
	s := newTestServer(&Deps{Runner: runner})

	var res queryResult
	decodeText(t, callTool(t, s, "run_query", map[string]any{"sql": "SELECT ..."}), &res)

	assert.Equal(t, "SELECT ...", runner.got)
	assert.Equal(t, []string{"STORE_NAME", "REVENUE"}, res.Columns)
	assert.Equal(t, [][]string{{"Harbor Fresh", "1080.5"}, {"Downtown Market", "NULL"}}, res.Rows)
	assert.Equal(t, 2, res.RowCount)
	assert.True(t, res.Truncated)
}

func TestRunQueryTool_NoRows(t *testing.T) {
	s := newTestServer(&Deps{Runner: &fakeRunner{result: &warehouse.Result{SQL: "SELECT 1 WHERE 1=0", Status: warehouse.StatusNoRows}}})

	var res queryResult
	decodeText(t, callTool(t, s, "run_query", map[string]any{"sql": "SELECT 1 WHERE 1=0"}), &res)
	assert.Equal(t, 0, res.RowCount)
	assert.Equal(t, "Query returned no results.", res.Message)
}

func TestRunQueryTool_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		err      error
		wantCode string
	}{
		{"missing sql", map[string]any{}, nil, "invalid_parameters"},
		{"unsafe", map[string]any{"sql": "DROP TABLE DIM_STORE"}, fmt.Errorf("%w: DROP", apperrors.ErrUnsafeQuery), "unsafe_query"},
		{"execution failure", map[string]any{"sql": "SELECT nope"}, errors.New("Binder Error: column nope not found"), "query_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: &warehouse.Result{Status: warehouse.StatusError, Err: tt.err}}
			resp := callTool(t, newTestServer(&Deps{Runner: runner}), "run_query", tt.args)

			var errResp ErrorResponse
			decodeText(t, resp, &errResp)
			assert.True(t, resp.Result.IsError)
			assert.Equal(t, tt.wantCode, errResp.Code)
		})
	}
}
