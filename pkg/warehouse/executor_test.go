package warehouse

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/duckdb"
	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/audit"
	"github.com/ekaya-inc/aria-engine/pkg/config"
	sqlpkg "github.com/ekaya-inc/aria-engine/pkg/sql"
)

func newDuckDBExecutor(t *testing.T, maxRows int) *Executor {
	t.Helper()

	cfg := config.WarehouseConfig{
		Type:         "duckdb",
		Path:         filepath.Join(t.TempDir(), "warehouse.duckdb"),
		QueryTimeout: 10 * time.Second,
		MaxRows:      maxRows,
	}
	e := NewExecutor(datasource.NewDatasourceAdapterFactory(zap.NewNop()), cfg, nil, zap.NewNop())

	ctx := context.Background()
	adapter, err := e.Open(ctx)
	require.NoError(t, err)
	defer adapter.Close()

	for _, stmt := range []string{
		`CREATE TABLE DIM_STORE (STORE_KEY INTEGER, STORE_NAME VARCHAR)`,
		`INSERT INTO DIM_STORE VALUES (1, 'Downtown Market'), (2, 'Harbor Fresh'), (3, NULL)`,
		`CREATE TABLE EMPTY_T (X INTEGER)`,
	} {
		_, err := adapter.Execute(ctx, stmt)
		require.NoError(t, err)
	}
	return e
}

func TestExecutor_RunRows(t *testing.T) {
	e := newDuckDBExecutor(t, 100)

	res := e.Run(context.Background(), "SELECT STORE_KEY, STORE_NAME FROM DIM_STORE ORDER BY STORE_KEY;")
	require.Equal(t, StatusRows, res.Status, "err: %v", res.Err)
	assert.Equal(t, []string{"STORE_KEY", "STORE_NAME"}, res.Columns)
	assert.Len(t, res.Rows, 3)
	assert.Equal(t,
		"STORE_KEY | STORE_NAME\n1 | Downtown Market\n2 | Harbor Fresh\n3 | NULL",
		res.Render())
}

func TestExecutor_RunNoRows(t *testing.T) {
	e := newDuckDBExecutor(t, 100)

	res := e.Run(context.Background(), "SELECT X FROM EMPTY_T")
	assert.Equal(t, StatusNoRows, res.Status)
	assert.Equal(t, "Query returned no results.", res.Render())
}

func TestExecutor_RunRowCap(t *testing.T) {
	e := newDuckDBExecutor(t, 2)

	res := e.Run(context.Background(), "SELECT * FROM range(10)")
	require.Equal(t, StatusRows, res.Status)
	assert.Len(t, res.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestExecutor_RunExecutionError(t *testing.T) {
	e := newDuckDBExecutor(t, 100)

	res := e.Run(context.Background(), "SELECT * FROM NO_SUCH_TABLE")
	require.Equal(t, StatusError, res.Status)
	require.Error(t, res.Err)
	assert.Contains(t, res.Render(), "Error: Could not execute query. ")
	assert.Contains(t, res.Render(), "NO_SUCH_TABLE")
}

func TestExecutor_RunRejectsUnsafe(t *testing.T) {
	e := newDuckDBExecutor(t, 100)

	res := e.Run(context.Background(), "DROP TABLE DIM_STORE")
	require.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, apperrors.ErrUnsafeQuery)

	var unsafe *sqlpkg.UnsafeQueryError
	assert.True(t, errors.As(res.Err, &unsafe))

	// Table is untouched.
	res = e.Run(context.Background(), "SELECT COUNT(*) FROM DIM_STORE")
	require.Equal(t, StatusRows, res.Status)
	assert.Equal(t, "3", FormatValue(res.Rows[0][0]))
}

func TestExecutor_RunAuditsRejections(t *testing.T) {
	e := newDuckDBExecutor(t, 100)
	core, recorded := observer.New(zapcore.DebugLevel)
	e.auditor = audit.NewSecurityAuditor(zap.New(core))

	e.Run(context.Background(), "DELETE FROM DIM_STORE")
	e.Run(context.Background(), "SELECT * FROM NO_SUCH_TABLE")

	logs := recorded.FilterLoggerName("security_audit").All()
	require.Len(t, logs, 1, "only guard rejections are audited")
	assert.Equal(t, "Unsafe query rejected", logs[0].Message)
}

func TestExecutor_Describe(t *testing.T) {
	e := newDuckDBExecutor(t, 100)

	dialect, columns, err := e.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DuckDB", dialect)
	assert.Len(t, columns, 3)
	require.NoError(t, e.Ping(context.Background()))
}

type failingFactory struct {
	calls int
}

func (f *failingFactory) NewAdapter(ctx context.Context, dsType string, cfg map[string]any) (datasource.Adapter, error) {
	f.calls++
	return nil, errors.New("authentication failed for user aria")
}

func (f *failingFactory) ListTypes() []datasource.DatasourceAdapterInfo { return nil }

func TestExecutor_ConnectionFailure(t *testing.T) {
	factory := &failingFactory{}
	e := NewExecutor(factory, config.WarehouseConfig{Type: "snowflake", QueryTimeout: time.Second, MaxRows: 10}, nil, zap.NewNop())

	res := e.Run(context.Background(), "SELECT 1")
	require.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Render(), "authentication failed")
	// Authentication errors are not retried.
	assert.Equal(t, 1, factory.calls)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"Bananas", "Bananas"},
		{[]byte("raw"), "raw"},
		{int64(42), "42"},
		{1234.5, "1234.5"},
		{float64(3), "3"},
		{0.123456, "0.1235"},
		{time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), "2025-10-01"},
		{time.Date(2025, 10, 1, 20, 15, 0, 0, time.UTC), "2025-10-01 20:15:00"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResult_RenderErrorWithoutCause(t *testing.T) {
	r := &Result{Status: StatusError}
	assert.Equal(t, "Error: Could not execute query. unknown error", r.Render())
}
