package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

// typeMap resolves result column OIDs to type names. Read-only after init.
var typeMap = pgtype.NewMap()

// Query runs sqlQuery and keeps at most limit rows (see datasource.EffectiveLimit).
func (a *Adapter) Query(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
	limit = datasource.EffectiveLimit(limit)

	rows, err := a.pool.Query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := &datasource.QueryExecutionResult{
		Columns: columnInfo(rows.FieldDescriptions()),
		Rows:    make([][]any, 0),
	}
	for rows.Next() {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}

	// Close first so an abandoned result set still reports its error.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// Execute runs a statement without a result set.
func (a *Adapter) Execute(ctx context.Context, sqlStatement string) (*datasource.ExecuteResult, error) {
	tag, err := a.pool.Exec(ctx, sqlStatement, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return &datasource.ExecuteResult{RowsAffected: tag.RowsAffected()}, nil
}

func columnInfo(fields []pgconn.FieldDescription) []datasource.ColumnInfo {
	cols := make([]datasource.ColumnInfo, len(fields))
	for i, fd := range fields {
		cols[i] = datasource.ColumnInfo{Name: fd.Name, Type: typeName(fd.DataTypeOID)}
	}
	return cols
}

func typeName(oid uint32) string {
	if t, ok := typeMap.TypeForOID(oid); ok {
		return strings.ToUpper(t.Name)
	}
	return "UNKNOWN"
}
