package snowflake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

const uploadStage = "aria_csv_stage"

// LoadCSV stages the file in a temporary stage and copies the mapped columns
// into req.Table. Rows that fail to load are skipped (ON_ERROR = 'CONTINUE').
// The stage lives only for this session, so all three statements share one connection.
func (a *Adapter) LoadCSV(ctx context.Context, req datasource.BulkLoadRequest) (*datasource.BulkLoadResult, error) {
	copySQL, err := buildCopyStatement(uploadStage, req)
	if err != nil {
		return nil, err
	}

	path, err := filepath.Abs(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("resolve csv path: %w", err)
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "CREATE OR REPLACE TEMPORARY STAGE "+uploadStage); err != nil {
		return nil, fmt.Errorf("create stage: %w", err)
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("PUT 'file://%s' @%s", filepath.ToSlash(path), uploadStage)); err != nil {
		return nil, fmt.Errorf("stage csv: %w", err)
	}

	res, err := conn.ExecContext(ctx, copySQL)
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", req.Table, err)
	}
	loaded, _ := res.RowsAffected()

	a.logger.Info("Loaded CSV",
		zap.String("table", req.Table),
		zap.Int64("rows", loaded))
	return &datasource.BulkLoadResult{RowsLoaded: loaded}, nil
}

// buildCopyStatement selects staged columns by position ($1 is the first CSV column).
func buildCopyStatement(stage string, req datasource.BulkLoadRequest) (string, error) {
	if len(req.Mappings) == 0 {
		return "", fmt.Errorf("no column mappings")
	}

	targets := make([]string, len(req.Mappings))
	sources := make([]string, len(req.Mappings))
	for i, m := range req.Mappings {
		idx := req.SourceIndex(m)
		if idx < 0 {
			return "", fmt.Errorf("column %q is not in the CSV header", m.Source)
		}
		targets[i] = datasource.QuoteIdentifier(m.Target)
		sources[i] = fmt.Sprintf("t.$%d", idx+1)
	}

	return fmt.Sprintf(
		"COPY INTO %s (%s) FROM (SELECT %s FROM @%s t) "+
			"FILE_FORMAT = (TYPE = 'CSV' FIELD_OPTIONALLY_ENCLOSED_BY = '\"' SKIP_HEADER = 1 EMPTY_FIELD_AS_NULL = TRUE) "+
			"ON_ERROR = 'CONTINUE'",
		datasource.QuoteIdentifier(strings.ToUpper(req.Table)),
		strings.Join(targets, ", "),
		strings.Join(sources, ", "),
		stage,
	), nil
}
