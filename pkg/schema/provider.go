// Package schema holds the process-scoped snapshot of warehouse tables and
// columns that every prompt embeds.
package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
)

const snapshotKey = "schema"

// Source reads column metadata from the warehouse.
type Source interface {
	Describe(ctx context.Context) (dialect string, columns []datasource.ColumnMetadata, err error)
}

// Column is one column of a table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a warehouse table and its columns in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Snapshot is an immutable view of the warehouse schema.
type Snapshot struct {
	Dialect  string    `json:"dialect"`
	Tables   []Table   `json:"tables"`
	Text     string    `json:"text"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Table returns the table named name, compared case-insensitively.
func (s *Snapshot) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}

// Provider loads the schema snapshot on first use and keeps it until Refresh
// is called or the optional TTL lapses.
type Provider struct {
	source Source
	ttl    time.Duration
	cache  *ttlcache.Cache[string, *Snapshot]
	logger *zap.Logger

	// serializes loads so concurrent first requests hit the warehouse once
	loadMu sync.Mutex
}

// NewProvider returns a provider over source. A ttl of 0 keeps the snapshot
// for the process lifetime.
func NewProvider(source Source, ttl time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		source: source,
		ttl:    ttl,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, *Snapshot](ttl),
			ttlcache.WithDisableTouchOnHit[string, *Snapshot](),
		),
		logger: logger.Named("schema"),
	}
}

// Get returns the current snapshot, loading it if none is cached.
func (p *Provider) Get(ctx context.Context) (*Snapshot, error) {
	if item := p.cache.Get(snapshotKey); item != nil {
		return item.Value(), nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	// Another caller may have loaded it while we waited.
	if item := p.cache.Get(snapshotKey); item != nil {
		return item.Value(), nil
	}
	return p.load(ctx)
}

// Text returns the rendered schema text of the current snapshot.
func (p *Provider) Text(ctx context.Context) (string, error) {
	snap, err := p.Get(ctx)
	if err != nil {
		return "", err
	}
	return snap.Text, nil
}

// Tables returns the structured tables of the current snapshot.
func (p *Provider) Tables(ctx context.Context) ([]Table, error) {
	snap, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Tables, nil
}

// Refresh reloads the snapshot from the warehouse. On failure the previous
// snapshot, if any, stays in place.
func (p *Provider) Refresh(ctx context.Context) (*Snapshot, error) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	return p.load(ctx)
}

// Snapshot returns the cached snapshot without loading.
func (p *Provider) Snapshot() (*Snapshot, bool) {
	if item := p.cache.Get(snapshotKey); item != nil {
		return item.Value(), true
	}
	return nil, false
}

func (p *Provider) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	dialect, columns, err := p.source.Describe(ctx)
	if err != nil {
		metrics.SchemaRefreshTotal.WithLabelValues("error").Inc()
		p.logger.Error("Failed to load warehouse schema", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSchemaUnavailable, err)
	}

	tables := groupColumns(columns)
	snap := &Snapshot{
		Dialect:  dialect,
		Tables:   tables,
		Text:     Render(tables),
		LoadedAt: time.Now(),
	}
	p.cache.Set(snapshotKey, snap, ttlcache.DefaultTTL)

	metrics.SchemaRefreshTotal.WithLabelValues("ok").Inc()
	p.logger.Info("Loaded warehouse schema",
		zap.Int("tables", len(tables)),
		zap.Int("columns", len(columns)),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// groupColumns groups columns by table, keeping discovery order.
func groupColumns(columns []datasource.ColumnMetadata) []Table {
	var tables []Table
	index := make(map[string]int)
	for _, c := range columns {
		i, ok := index[c.TableName]
		if !ok {
			i = len(tables)
			index[c.TableName] = i
			tables = append(tables, Table{Name: c.TableName})
		}
		tables[i].Columns = append(tables[i].Columns, Column{Name: c.ColumnName, Type: c.DataType})
	}
	return tables
}

// Render formats tables as prompt text: one "Table:"/"Columns:" block per
// table, blocks separated by a blank line.
func Render(tables []Table) string {
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Table: ")
		b.WriteString(t.Name)
		b.WriteString("\nColumns: ")
		for j, c := range t.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%s)", c.Name, c.Type)
		}
	}
	return strings.TrimSpace(b.String())
}
