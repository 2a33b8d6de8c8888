package tools

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

var testSnapshot = &schema.Snapshot{
	Dialect: "PostgreSQL",
	Tables: []schema.Table{
		{Name: "DIM_STORE", Columns: []schema.Column{{Name: "STORE_KEY", Type: "integer"}, {Name: "STORE_NAME", Type: "text"}}},
		{Name: "FACT_SALES_DAILY", Columns: []schema.Column{{Name: "DATE_KEY", Type: "integer"}}},
	},
	Text: "Table: DIM_STORE\nColumns: STORE_KEY (integer), STORE_NAME (text)",
}

func TestGetSchemaTool(t *testing.T) {
	s := newTestServer(&Deps{Schema: &fakeSchema{snapshot: testSnapshot}})

	var res schemaResult
	decodeText(t, callTool(t, s, "get_schema", nil), &res)
	assert.Equal(t, "PostgreSQL", res.Dialect)
	assert.Equal(t, 2, res.TableCount)
	assert.Equal(t, testSnapshot.Text, res.Schema)
	assert.Empty(t, res.Tables)

	res = schemaResult{}
	decodeText(t, callTool(t, s, "get_schema", map[string]any{"include_columns": true}), &res)
	require.Len(t, res.Tables, 2)
	assert.Equal(t, "STORE_NAME", res.Tables[0].Columns[1].Name)
}

func TestGetSchemaTool_Unavailable(t *testing.T) {
	s := newTestServer(&Deps{Schema: &fakeSchema{err: fmt.Errorf("%w: connection refused", apperrors.ErrSchemaUnavailable)}})
	resp := callTool(t, s, "get_schema", nil)

	var errResp ErrorResponse
	decodeText(t, resp, &errResp)
	assert.True(t, resp.Result.IsError)
	assert.Equal(t, "schema_unavailable", errResp.Code)
}

func TestRefreshSchemaTool(t *testing.T) {
	fake := &fakeSchema{snapshot: testSnapshot}
	s := newTestServer(&Deps{Schema: fake})

	var res schemaResult
	decodeText(t, callTool(t, s, "refresh_schema", nil), &res)
	assert.Equal(t, 1, fake.refreshed)
	assert.Equal(t, 2, res.TableCount)

	fake.refreshErr = errors.New("timeout")
	resp := callTool(t, s, "refresh_schema", nil)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "timeout")
}
