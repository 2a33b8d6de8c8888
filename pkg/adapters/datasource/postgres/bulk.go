package postgres

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
)

// LoadCSV streams the mapped CSV columns into req.Table with COPY FROM STDIN.
func (a *Adapter) LoadCSV(ctx context.Context, req datasource.BulkLoadRequest) (*datasource.BulkLoadResult, error) {
	if len(req.Mappings) == 0 {
		return nil, fmt.Errorf("no column mappings")
	}

	targets := make([]string, len(req.Mappings))
	for i, m := range req.Mappings {
		targets[i] = pgx.Identifier{m.Target}.Sanitize()
	}
	copySQL := fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER false)",
		pgx.Identifier{a.config.Schema, req.Table}.Sanitize(),
		strings.Join(targets, ", "))

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	pr, pw := io.Pipe()
	go func() {
		_, err := datasource.ProjectCSV(req, pw, false)
		pw.CloseWithError(err)
	}()

	tag, err := conn.Conn().PgConn().CopyFrom(ctx, pr, copySQL)
	_ = pr.Close()
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", req.Table, err)
	}

	a.logger.Info("Loaded CSV",
		zap.String("table", req.Table),
		zap.Int64("rows", tag.RowsAffected()))
	return &datasource.BulkLoadResult{RowsLoaded: tag.RowsAffected()}, nil
}
