package datasource

import "context"

// ConnectionTester tests warehouse connectivity.
// Each implementation owns its connection and must be closed when done.
type ConnectionTester interface {
	// TestConnection verifies the warehouse is reachable with valid credentials.
	// Returns nil if connection is healthy, error otherwise.
	TestConnection(ctx context.Context) error

	// Close releases the warehouse connection.
	Close() error
}

// SchemaDiscoverer discovers the columns the assistant is allowed to query.
type SchemaDiscoverer interface {
	// DiscoverColumns returns every column of every table in the configured
	// schema, ordered by table name and then ordinal position.
	DiscoverColumns(ctx context.Context) ([]ColumnMetadata, error)

	// Close releases the warehouse connection.
	Close() error
}

// MaxQueryLimit is the hard cap on rows returned by Query.
const MaxQueryLimit = 10000

// QueryExecutor executes SQL against a warehouse.
//   - Query: bounded reads; the row cap is enforced while scanning
//   - Execute: unrestricted statements, used for demo seeding only
type QueryExecutor interface {
	// Query runs a statement and returns at most limit rows in warehouse order.
	//
	// Limit behavior:
	//   - limit <= 0: uses MaxQueryLimit
	//   - limit > MaxQueryLimit: capped to MaxQueryLimit
	//
	// When more rows were available the result is marked Truncated.
	Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)

	// Execute runs any SQL statement without modification.
	Execute(ctx context.Context, sqlStatement string) (*ExecuteResult, error)

	// Close releases any resources held by the executor.
	Close() error
}

// BulkLoader loads a CSV file into an existing table. Adapters that cannot
// bulk load simply don't implement it.
type BulkLoader interface {
	LoadCSV(ctx context.Context, req BulkLoadRequest) (*BulkLoadResult, error)
}

// Adapter is a single warehouse connection with everything the engine needs.
type Adapter interface {
	ConnectionTester
	DiscoverColumns(ctx context.Context) ([]ColumnMetadata, error)
	Query(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)
	Execute(ctx context.Context, sqlStatement string) (*ExecuteResult, error)

	// Dialect names the SQL dialect for prompts, e.g. "Snowflake".
	Dialect() string
}

// ColumnMapping maps one CSV header column to a target table column.
type ColumnMapping struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// BulkLoadRequest describes a CSV load. Mappings are applied in order and
// every Source must appear in Header.
type BulkLoadRequest struct {
	FilePath string
	Table    string
	Header   []string
	Mappings []ColumnMapping
}

// SourceIndex returns the zero-based header position of a mapping's source column.
func (r BulkLoadRequest) SourceIndex(m ColumnMapping) int {
	for i, h := range r.Header {
		if h == m.Source {
			return i
		}
	}
	return -1
}

// BulkLoadResult reports the outcome of a bulk load.
type BulkLoadResult struct {
	RowsLoaded int64 `json:"rows_loaded"`
}

// ExecuteResult holds the results from executing a statement.
type ExecuteResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

// ColumnMetadata is one column found by DiscoverColumns, in table then ordinal order.
type ColumnMetadata struct {
	TableName       string
	ColumnName      string
	DataType        string
	OrdinalPosition int // 1-based
}

// ColumnInfo describes a result column with database-agnostic type information.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // Database type name (e.g., "TEXT", "NUMBER", "VARCHAR")
}

// QueryExecutionResult holds the results from executing a query.
// Rows keep the column order of Columns.
type QueryExecutionResult struct {
	Columns   []ColumnInfo `json:"columns"`
	Rows      [][]any      `json:"rows"`
	RowCount  int          `json:"row_count"`
	Truncated bool         `json:"truncated,omitempty"`
}

// ColumnNames returns the result column names in order.
func (r *QueryExecutionResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// EffectiveLimit applies the MaxQueryLimit rules to a requested limit.
func EffectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
