package sql

import (
	"reflect"
	"testing"
)

func TestValidateAndNormalize_ValidQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple select", "SELECT 1", "SELECT 1"},
		{"trailing semicolon", "SELECT 1;", "SELECT 1"},
		{"trailing semicolon and whitespace", "SELECT 1;  \n", "SELECT 1"},
		{"surrounding whitespace", "  SELECT 1  ", "SELECT 1"},
		{"semicolon inside literal", "SELECT * FROM DIM_PRODUCT WHERE NAME = 'a;b'", "SELECT * FROM DIM_PRODUCT WHERE NAME = 'a;b'"},
		{"semicolon inside quoted identifier", `SELECT * FROM "odd;name"`, `SELECT * FROM "odd;name"`},
		{"doubled quote escape", "SELECT * FROM DIM_STORE WHERE CITY = 'O''Fallon';", "SELECT * FROM DIM_STORE WHERE CITY = 'O''Fallon'"},
		{"semicolon in comment", "SELECT 1 -- first; second\nFROM DUAL", "SELECT 1 -- first; second\nFROM DUAL"},
		{"semicolon in block comment", "SELECT /* a; b */ 1", "SELECT /* a; b */ 1"},
		{"multi-line", "SELECT SUM(NET_SALES)\nFROM FACT_SALES_DAILY\nWHERE D_DATE >= '2025-10-01';", "SELECT SUM(NET_SALES)\nFROM FACT_SALES_DAILY\nWHERE D_DATE >= '2025-10-01'"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if result.Error != nil {
				t.Errorf("unexpected error: %v", result.Error)
			}
			if result.NormalizedSQL != tt.expected {
				t.Errorf("got %q, want %q", result.NormalizedSQL, tt.expected)
			}
		})
	}
}

func TestValidateAndNormalize_MultipleStatements(t *testing.T) {
	for _, input := range []string{
		"SELECT 1; SELECT 2",
		"SELECT 1; SELECT 2;",
		"SELECT 1;SELECT 2",
		"SELECT 1; DROP TABLE FACT_SALES_DAILY",
		"SELECT * FROM DIM_STORE WHERE 1=1; DELETE FROM DIM_STORE",
	} {
		t.Run(input, func(t *testing.T) {
			result := ValidateAndNormalize(input)
			if result.Error != ErrMultipleStatements {
				t.Errorf("expected ErrMultipleStatements, got %v", result.Error)
			}
		})
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		code         string
		literals     []string
		unterminated bool
	}{
		{"plain", "SELECT a FROM t", "SELECT a FROM t", nil, false},
		{"literal", "WHERE x = 'abc'", "WHERE x = ''", []string{"abc"}, false},
		{"doubled quote", "'it''s'", "''", []string{"it's"}, false},
		{"backslash escape", `'it\'s'`, "''", []string{"it's"}, false},
		{"quoted identifier", `SELECT "DROP" FROM t`, `SELECT "_" FROM t`, nil, false},
		{"line comment", "SELECT 1 -- DROP\nFROM t", "SELECT 1 \nFROM t", nil, false},
		{"block comment", "SELECT /* DELETE */ 1", "SELECT   1", nil, false},
		{"unterminated literal", "SELECT 'abc", "SELECT ", nil, true},
		{"unterminated comment", "SELECT /* abc", "SELECT ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scan(tt.input)
			if got.code != tt.code {
				t.Errorf("code = %q, want %q", got.code, tt.code)
			}
			if !reflect.DeepEqual(got.literals, tt.literals) {
				t.Errorf("literals = %q, want %q", got.literals, tt.literals)
			}
			if got.unterminated != tt.unterminated {
				t.Errorf("unterminated = %v, want %v", got.unterminated, tt.unterminated)
			}
		})
	}
}
