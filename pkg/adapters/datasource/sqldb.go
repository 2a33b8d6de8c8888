package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ScanSQLRows reads up to limit rows from a database/sql result set.
// Values keep column order; []byte values become strings.
// See QueryExecutor.Query for limit behavior.
func ScanSQLRows(rows *sql.Rows, limit int) (*QueryExecutionResult, error) {
	limit = EffectiveLimit(limit)

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]ColumnInfo, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ColumnInfo{
			Name: ct.Name(),
			Type: strings.ToUpper(ct.DatabaseTypeName()),
		}
	}

	result := &QueryExecutionResult{
		Columns: columns,
		Rows:    make([][]any, 0),
	}
	for rows.Next() {
		if len(result.Rows) == limit {
			result.Truncated = true
			break
		}

		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// QueryDB runs a bounded query on db and scans the result.
func QueryDB(ctx context.Context, db *sql.DB, sqlQuery string, limit int) (*QueryExecutionResult, error) {
	rows, err := db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return ScanSQLRows(rows, limit)
}

// ExecDB runs a statement on db. Drivers that cannot report affected rows yield 0.
func ExecDB(ctx context.Context, db *sql.DB, sqlStatement string) (*ExecuteResult, error) {
	res, err := db.ExecContext(ctx, sqlStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &ExecuteResult{RowsAffected: affected}, nil
}

// DiscoverColumnsDB runs a (table, column, type) query ordered by table and
// ordinal position and collects the metadata.
func DiscoverColumnsDB(ctx context.Context, db *sql.DB, query string, args ...any) ([]ColumnMetadata, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnMetadata
	position := 0
	lastTable := ""
	for rows.Next() {
		var c ColumnMetadata
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		if c.TableName != lastTable {
			position = 0
			lastTable = c.TableName
		}
		position++
		c.OrdinalPosition = position
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// QuoteIdentifier double-quotes an identifier, doubling embedded quotes.
// Snowflake, PostgreSQL and DuckDB share this syntax.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral single-quotes a string literal, doubling embedded quotes.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
