package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

type staticTables []schema.Table

func (s staticTables) Tables(context.Context) ([]schema.Table, error) { return s, nil }

type failingTables struct{ err error }

func (f failingTables) Tables(context.Context) ([]schema.Table, error) { return nil, f.err }

var warehouseTables = staticTables{
	{Name: "dim_store", Columns: []schema.Column{{Name: "store_key", Type: "integer"}, {Name: "store_name", Type: "text"}}},
	{Name: "fact_spoilage_daily", Columns: []schema.Column{
		{Name: "date_key", Type: "integer"},
		{Name: "store_key", Type: "integer"},
		{Name: "product_key", Type: "integer"},
		{Name: "qty_spoiled", Type: "integer"},
		{Name: "spoilage_value", Type: "numeric"},
	}},
}

func strPtr(s string) *string { return &s }

func saveCSV(t *testing.T, s *Store, body string) string {
	t.Helper()
	name, err := s.Save("spoilage.csv", strings.NewReader(body))
	require.NoError(t, err)
	return name
}

func TestPlanner_Analyze(t *testing.T) {
	store := newTestStore(t, 0)
	name := saveCSV(t, store, "Date,Store,Product,Spoiled,Notes\n20251001,1,2,3,bruised\n")

	client := llm.NewScriptedLLMClient("```json\n" + `{
  "suggested_table": "PUBLIC.FACT_SPOILAGE_DAILY",
  "column_mapping": {
    "Date": "DATE_KEY",
    "Store": "STORE_KEY",
    "Product": "product_key",
    "Spoiled": "QTY_SPOILED",
    "Notes": null
  }
}` + "\n```")

	p := NewPlanner(client, warehouseTables, store, 0, zap.NewNop())
	plan, err := p.Analyze(context.Background(), name)
	require.NoError(t, err)

	assert.Equal(t, name, plan.Filename)
	assert.Equal(t, []string{"Date", "Store", "Product", "Spoiled", "Notes"}, plan.Columns)
	assert.Equal(t, "fact_spoilage_daily", plan.SuggestedTable)
	assert.Equal(t, map[string]*string{
		"Date":    strPtr("date_key"),
		"Store":   strPtr("store_key"),
		"Product": strPtr("product_key"),
		"Spoiled": strPtr("qty_spoiled"),
		"Notes":   nil,
	}, plan.ColumnMapping)

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "20251001")
	assert.Contains(t, client.Prompts[0], "fact_spoilage_daily")
}

func TestPlanner_Analyze_DropsUnknownAndDuplicateTargets(t *testing.T) {
	store := newTestStore(t, 0)
	name := saveCSV(t, store, "id,name,label\n1,a,b\n")

	client := llm.NewScriptedLLMClient(`{"suggested_table": "dim_stores",
		"column_mapping": {"id": "STORE_KEY", "name": "STORE_NAME", "label": "store_name", "extra": "STORE_KEY"}}`)

	plan, err := NewPlanner(client, warehouseTables, store, 0, zap.NewNop()).Analyze(context.Background(), name)
	require.NoError(t, err)

	assert.Equal(t, "dim_store", plan.SuggestedTable)
	assert.Equal(t, map[string]*string{
		"id":    strPtr("store_key"),
		"name":  strPtr("store_name"),
		"label": nil,
	}, plan.ColumnMapping)
}

func TestPlanner_Analyze_Errors(t *testing.T) {
	store := newTestStore(t, 0)
	name := saveCSV(t, store, "a\n1\n")
	ctx := context.Background()

	t.Run("unknown file", func(t *testing.T) {
		p := NewPlanner(llm.NewMockLLMClient(), warehouseTables, store, 0, zap.NewNop())
		_, err := p.Analyze(ctx, "nope.csv")
		assert.Error(t, err)
	})

	t.Run("unknown table", func(t *testing.T) {
		client := llm.NewScriptedLLMClient(`{"suggested_table": "inventory", "column_mapping": {"a": "x"}}`)
		_, err := NewPlanner(client, warehouseTables, store, 0, zap.NewNop()).Analyze(ctx, name)
		assert.ErrorIs(t, err, ErrUnknownTable)
	})

	t.Run("not json", func(t *testing.T) {
		client := llm.NewScriptedLLMClient("I think it goes in the store table.")
		_, err := NewPlanner(client, warehouseTables, store, 0, zap.NewNop()).Analyze(ctx, name)
		assert.ErrorContains(t, err, "invalid upload plan")
	})

	t.Run("model failure", func(t *testing.T) {
		client := llm.NewMockLLMClient()
		client.GenerateResponseFunc = func(context.Context, string, string, float64) (*llm.GenerateResponseResult, error) {
			return nil, errors.New("boom")
		}
		_, err := NewPlanner(client, warehouseTables, store, 0, zap.NewNop()).Analyze(ctx, name)
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("schema failure", func(t *testing.T) {
		_, err := NewPlanner(llm.NewMockLLMClient(), failingTables{errors.New("offline")}, store, 0, zap.NewNop()).Analyze(ctx, name)
		assert.ErrorContains(t, err, "offline")
	})
}

func TestResolveTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"dim_store", "dim_store", true},
		{"DIM_STORE", "dim_store", true},
		{`"RETAIL"."DIM_STORE"`, "dim_store", true},
		{"dim_stores", "dim_store", true},
		{"fact_spoilage_daily", "fact_spoilage_daily", true},
		{"", "", false},
		{"inventory", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ResolveTable(warehouseTables, tt.in)
			if ok != tt.ok || got.Name != tt.want {
				t.Errorf("ResolveTable(%q) = %q, %v; want %q, %v", tt.in, got.Name, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPlanner_UsesUploadSystemMessage(t *testing.T) {
	store := newTestStore(t, 0)
	name := saveCSV(t, store, "store_key\n1\n")

	var system string
	client := llm.NewMockLLMClient()
	client.GenerateResponseFunc = func(_ context.Context, _, sys string, _ float64) (*llm.GenerateResponseResult, error) {
		system = sys
		return &llm.GenerateResponseResult{Content: `{"suggested_table":"dim_store","column_mapping":{"store_key":"store_key"}}`}, nil
	}

	_, err := NewPlanner(client, warehouseTables, store, 0, zap.NewNop()).Analyze(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, prompts.UploadMappingSystemMessage, system)
}
