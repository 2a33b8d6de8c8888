package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
)

func TestGuard_AllowsReadOnlyQueries(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"select", "SELECT SUM(NET_SALES) FROM FACT_SALES_DAILY;", "SELECT SUM(NET_SALES) FROM FACT_SALES_DAILY"},
		{"lower case", "select 1", "select 1"},
		{"cte", "WITH w AS (SELECT MAX(D_DATE) AS D FROM DIM_DATE) SELECT * FROM w", "WITH w AS (SELECT MAX(D_DATE) AS D FROM DIM_DATE) SELECT * FROM w"},
		{"parenthesized union", "(SELECT 1) UNION ALL (SELECT 2)", "(SELECT 1) UNION ALL (SELECT 2)"},
		{"keyword inside literal", "SELECT * FROM DIM_PROMOTION WHERE PROMO_NAME = 'Drop Day'", "SELECT * FROM DIM_PROMOTION WHERE PROMO_NAME = 'Drop Day'"},
		{"keyword inside quoted identifier", `SELECT "UPDATE" FROM t`, `SELECT "UPDATE" FROM t`},
		{"keyword-prefixed column", "SELECT CREATED_AT, UPDATED_BY FROM t", "SELECT CREATED_AT, UPDATED_BY FROM t"},
		{"leading comment", "-- weekly sales\nSELECT 1", "-- weekly sales\nSELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Check(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGuard_RejectsUnsafeQueries(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		name       string
		input      string
		wantReason string
	}{
		{"empty", "   ", "empty query"},
		{"multiple statements", "SELECT 1; DROP TABLE DIM_STORE", "multiple statements"},
		{"delete", "DELETE FROM FACT_SALES_DAILY", "only SELECT or WITH"},
		{"use", "USE WAREHOUSE BIG", "only SELECT or WITH"},
		{"select into", "SELECT * INTO backup FROM DIM_STORE", "INTO is not allowed"},
		{"data-modifying cte", "WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", "DELETE is not allowed"},
		{"unterminated literal", "SELECT 'abc", "unterminated"},
		{"prose", "I cannot answer that.", "only SELECT or WITH"},
		{"injected literal", "SELECT * FROM DIM_PRODUCT WHERE NAME = ''' OR ''1''=''1'", "injection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Check(tt.input)
			require.Error(t, err)

			var unsafe *UnsafeQueryError
			require.True(t, errors.As(err, &unsafe))
			assert.Contains(t, unsafe.Reason, tt.wantReason)
			assert.True(t, errors.Is(err, apperrors.ErrUnsafeQuery))
		})
	}
}

func TestGuard_ExtraDenied(t *testing.T) {
	g := NewGuard("sample")

	_, err := g.Check("SELECT * FROM t SAMPLE (10)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAMPLE")
}

func TestUnsafeQueryError_Error(t *testing.T) {
	assert.Equal(t, "unsafe query: empty query", (&UnsafeQueryError{Reason: "empty query"}).Error())
	assert.Equal(t, "unsafe query: x (fingerprint s&sos)", (&UnsafeQueryError{Reason: "x", Fingerprint: "s&sos"}).Error())
}
