package upload

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

// MappingError is returned when no mapped column is present in the CSV.
type MappingError struct {
	Table string
}

func (e *MappingError) Error() string {
	return "AI mapping resulted in no common columns. Cannot upload."
}

// Opener connects to the warehouse. *warehouse.Executor satisfies it.
type Opener interface {
	Open(ctx context.Context) (datasource.Adapter, error)
}

// Request is a confirmed upload plan. Mapping goes from CSV column to table
// column; columns without an entry are skipped.
type Request struct {
	Filename string
	Table    string
	Mapping  map[string]string
}

// Outcome describes a completed load.
type Outcome struct {
	Table      string `json:"table"`
	RowsLoaded int64  `json:"rows_loaded"`
	Message    string `json:"message"`
}

// Loader executes confirmed uploads.
type Loader struct {
	store  *Store
	tables TableLister
	opener Opener
	logger *zap.Logger
}

// NewLoader wires a Loader.
func NewLoader(store *Store, tables TableLister, opener Opener, logger *zap.Logger) *Loader {
	return &Loader{store: store, tables: tables, opener: opener, logger: logger.Named("upload-loader")}
}

// Execute bulk-loads the stored file into req.Table and deletes the file on success.
func (l *Loader) Execute(ctx context.Context, req Request) (*Outcome, error) {
	if req.Filename == "" || req.Table == "" || req.Mapping == nil {
		return nil, fmt.Errorf("%w: filename, table and column mapping are required", apperrors.ErrInvalidRequest)
	}

	path, err := l.store.Path(req.Filename)
	if err != nil {
		return nil, err
	}
	header, _, err := datasource.ReadCSVHeader(path, 0)
	if err != nil {
		return nil, err
	}

	tables, err := l.tables.Tables(ctx)
	if err != nil {
		return nil, err
	}
	table, ok := ResolveTable(tables, req.Table)
	if !ok {
		metrics.UploadsTotal.WithLabelValues("unknown_table").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, req.Table)
	}
	req.Table = table.Name

	mappings := resolveMappings(header, req.Mapping, table)
	if len(mappings) == 0 {
		metrics.UploadsTotal.WithLabelValues("no_mapping").Inc()
		return nil, &MappingError{Table: req.Table}
	}

	adapter, err := l.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	bulk, ok := adapter.(datasource.BulkLoader)
	if !ok {
		return nil, fmt.Errorf("%w: bulk CSV loading on %s", apperrors.ErrUnsupported, adapter.Dialect())
	}

	res, err := bulk.LoadCSV(ctx, datasource.BulkLoadRequest{
		FilePath: path,
		Table:    req.Table,
		Header:   header,
		Mappings: mappings,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load %s into %s: %w", req.Filename, req.Table, err)
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	if err := l.store.Remove(req.Filename); err != nil {
		l.logger.Warn("Failed to remove uploaded file", zap.String("file", req.Filename), zap.Error(err))
	}

	l.logger.Info("Uploaded CSV",
		zap.String("table", req.Table),
		zap.Int("columns", len(mappings)),
		zap.Int64("rows", res.RowsLoaded))
	return &Outcome{
		Table:      req.Table,
		RowsLoaded: res.RowsLoaded,
		Message:    fmt.Sprintf("Successfully uploaded data to %s.", req.Table),
	}, nil
}

// resolveMappings keeps CSV columns whose target names a column of table,
// spelled the way the table spells it. A table column is loaded at most once.
func resolveMappings(header []string, mapping map[string]string, table schema.Table) []datasource.ColumnMapping {
	used := make(map[string]bool)
	var out []datasource.ColumnMapping
	for _, col := range header {
		target := strings.TrimSpace(mapping[col])
		if target == "" {
			continue
		}
		for _, c := range table.Columns {
			if strings.EqualFold(c.Name, target) && !used[c.Name] {
				used[c.Name] = true
				out = append(out, datasource.ColumnMapping{Source: col, Target: c.Name})
				break
			}
		}
	}
	return out
}
