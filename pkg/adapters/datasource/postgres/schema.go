package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const discoverColumnsQuery = `
	SELECT c.table_name::text, c.column_name::text, upper(c.data_type), c.ordinal_position::int
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE c.table_schema = $1
	  AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position`

// DiscoverColumns returns the columns of every base table in the configured schema.
func (a *Adapter) DiscoverColumns(ctx context.Context) ([]datasource.ColumnMetadata, error) {
	rows, err := a.pool.Query(ctx, discoverColumnsQuery, a.config.Schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var position int32
		if err := rows.Scan(&c.TableName, &c.ColumnName, &c.DataType, &position); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.OrdinalPosition = int(position)
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	a.logger.Debug("Discovered columns",
		zap.String("schema", a.config.Schema),
		zap.Int("columns", len(columns)))
	return columns, nil
}
