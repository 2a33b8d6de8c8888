//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestWarehouseDB_Connection(t *testing.T) {
	testDB := GetWarehouseDB(t)

	ctx := context.Background()

	var tableCount int
	err := testDB.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name NOT LIKE 'schema_migrations'").
		Scan(&tableCount)
	if err != nil {
		t.Fatalf("failed to count tables: %v", err)
	}

	if tableCount != 6 {
		t.Errorf("expected 6 tables in retail schema, got %d", tableCount)
	}
}

func TestWarehouseDB_TableData(t *testing.T) {
	testDB := GetWarehouseDB(t)

	ctx := context.Background()

	tests := []struct {
		table    string
		expected int
	}{
		{"dim_product", 8},
		{"dim_store", 4},
		{"dim_promotion", 3},
		{"dim_date", 127},
	}

	for _, tt := range tests {
		var count int
		err := testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+tt.table).Scan(&count)
		if err != nil {
			t.Errorf("failed to count %s: %v", tt.table, err)
			continue
		}
		if count != tt.expected {
			t.Errorf("%s: expected %d rows, got %d", tt.table, tt.expected, count)
		}
	}
}
