package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/jsonutil"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

// ErrUnknownTable is returned when the suggested table is not in the warehouse.
var ErrUnknownTable = errors.New("suggested table does not exist in the warehouse")

const sampleRows = 3

// TableLister returns the warehouse tables. *schema.Provider satisfies it.
type TableLister interface {
	Tables(ctx context.Context) ([]schema.Table, error)
}

// Plan is the proposed upload the user confirms before loading.
// ColumnMapping has one entry per CSV column; nil means "skip this column".
type Plan struct {
	Filename       string             `json:"filename"`
	Columns        []string           `json:"columns"`
	SuggestedTable string             `json:"suggested_table"`
	ColumnMapping  map[string]*string `json:"column_mapping"`
}

// Planner asks the model where a CSV belongs.
type Planner struct {
	client      llm.LLMClient
	tables      TableLister
	store       *Store
	temperature float64
	logger      *zap.Logger
}

// NewPlanner wires a Planner.
func NewPlanner(client llm.LLMClient, tables TableLister, store *Store, temperature float64, logger *zap.Logger) *Planner {
	return &Planner{client: client, tables: tables, store: store, temperature: temperature, logger: logger.Named("upload-planner")}
}

// Analyze reads the header of a stored CSV and returns the model's suggested
// destination table and column mapping, normalized to real table and column names.
func (p *Planner) Analyze(ctx context.Context, filename string) (*Plan, error) {
	path, err := p.store.Path(filename)
	if err != nil {
		return nil, err
	}
	header, samples, err := datasource.ReadCSVHeader(path, sampleRows)
	if err != nil {
		return nil, err
	}

	tables, err := p.tables.Tables(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]prompts.TableColumns, len(tables))
	for i, t := range tables {
		candidates[i].Name = t.Name
		for _, c := range t.Columns {
			candidates[i].Columns = append(candidates[i].Columns, prompts.ColumnType{Name: c.Name, Type: c.Type})
		}
	}

	res, err := p.client.GenerateResponse(ctx,
		prompts.BuildUploadMappingPrompt(header, samples, candidates),
		prompts.UploadMappingSystemMessage, p.temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to get an upload plan from the model: %w", err)
	}

	reply, err := llm.ParseJSONResponse[struct {
		SuggestedTable json.RawMessage `json:"suggested_table"`
		ColumnMapping  json.RawMessage `json:"column_mapping"`
	}](res.Content)
	if err != nil {
		return nil, fmt.Errorf("model returned an invalid upload plan: %w", err)
	}
	suggested := jsonutil.FlexibleString(reply.SuggestedTable)
	mapping, err := jsonutil.FlexibleMapping(reply.ColumnMapping)
	if err != nil {
		return nil, fmt.Errorf("model returned an invalid column mapping: %w", err)
	}

	table, ok := ResolveTable(tables, suggested)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, suggested)
	}

	plan := &Plan{
		Filename:       filename,
		Columns:        header,
		SuggestedTable: table.Name,
		ColumnMapping:  normalizeMapping(header, mapping, table),
	}

	p.logger.Info("Proposed upload plan",
		zap.String("file", filename),
		zap.String("table", plan.SuggestedTable),
		zap.Int("mapped_columns", countMapped(plan.ColumnMapping)))
	return plan, nil
}

// ResolveTable finds name among tables ignoring case, an optional schema
// qualifier and quoting, then by singular or plural form.
func ResolveTable(tables []schema.Table, name string) (schema.Table, bool) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Trim(name, "`\"[]")
	if name == "" {
		return schema.Table{}, false
	}

	for _, candidate := range []string{name, inflection.Singular(name), inflection.Plural(name)} {
		for _, t := range tables {
			if strings.EqualFold(t.Name, candidate) {
				return t, true
			}
		}
	}
	return schema.Table{}, false
}

// normalizeMapping returns one entry per CSV column. Targets are replaced by
// the table's own spelling; unknown or already-used targets become nil.
func normalizeMapping(header []string, mapping []jsonutil.Mapping, table schema.Table) map[string]*string {
	suggested := make(map[string]string, len(mapping))
	for _, m := range mapping {
		suggested[m.Key] = m.Value
	}

	used := make(map[string]bool)
	out := make(map[string]*string, len(header))
	for _, col := range header {
		out[col] = nil
		target, ok := suggested[col]
		if !ok {
			continue
		}
		for _, c := range table.Columns {
			if strings.EqualFold(c.Name, strings.TrimSpace(target)) && !used[c.Name] {
				name := c.Name
				out[col] = &name
				used[c.Name] = true
				break
			}
		}
	}
	return out
}

func countMapped(m map[string]*string) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}
