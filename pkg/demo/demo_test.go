package demo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource/duckdb"
)

func TestDateKey(t *testing.T) {
	d := time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 20250907, DateKey(d))

	back, err := ParseDateKey(20250907)
	require.NoError(t, err)
	assert.True(t, back.Equal(d))
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(DefaultSeed)
	b := Generate(DefaultSeed)
	assert.Equal(t, a.Tables, b.Tables)
}

func TestGenerate_Shape(t *testing.T) {
	ds := Generate(DefaultSeed)

	days := int(EndDate.Sub(StartDate).Hours()/24) + 1
	// Four months, each with a duplicated first day.
	assert.Len(t, ds.Tables["DIM_DATE"], days+4)
	assert.Len(t, ds.Tables["DIM_PRODUCT"], len(Products))
	assert.Len(t, ds.Tables["DIM_STORE"], len(Stores))
	assert.Len(t, ds.Tables["FACT_SALES_DAILY"], days*len(Stores)*len(Products))
	assert.NotEmpty(t, ds.Tables["FACT_SPOILAGE_DAILY"])
}

func TestInsertStatements_Batches(t *testing.T) {
	ds := &Dataset{Tables: map[string][]string{
		"DIM_STORE": {"(1)", "(2)", "(3)"},
		"DIM_DATE":  {"(20250701)"},
	}}

	stmts := ds.InsertStatements(2)
	assert.Equal(t, []string{
		"INSERT INTO DIM_DATE VALUES (20250701)",
		"INSERT INTO DIM_STORE VALUES (1), (2)",
		"INSERT INTO DIM_STORE VALUES (3)",
	}, stmts)
}

func TestSchemaStatements(t *testing.T) {
	stmts, err := SchemaStatements()
	require.NoError(t, err)
	require.Len(t, stmts, 6)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
}

func TestSeed_DuckDB(t *testing.T) {
	ctx := context.Background()
	cfg, err := duckdb.FromMap(map[string]any{"path": filepath.Join(t.TempDir(), "demo.duckdb")})
	require.NoError(t, err)
	w, err := duckdb.NewAdapter(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, CreateSchema(ctx, w))

	seeded, err := Seed(ctx, w, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, seeded)

	// Second run is a no-op.
	seeded, err = Seed(ctx, w, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, seeded)

	res, err := w.Query(ctx, "SELECT COUNT(*) - COUNT(DISTINCT DATE_KEY) FROM DIM_DATE", 1)
	require.NoError(t, err)
	assert.Equal(t, "4", toString(res.Rows[0][0]))

	res, err = w.Query(ctx, "SELECT MIN(DATE_KEY), MAX(DATE_KEY) FROM FACT_SALES_DAILY", 1)
	require.NoError(t, err)
	assert.Equal(t, "20250701", toString(res.Rows[0][0]))
	assert.Equal(t, "20251031", toString(res.Rows[0][1]))
}

func toString(v any) string {
	return fmt.Sprint(v)
}
