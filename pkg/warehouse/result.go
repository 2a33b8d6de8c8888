package warehouse

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of running one query.
type Status string

const (
	StatusRows   Status = "rows"
	StatusNoRows Status = "no_rows"
	StatusError  Status = "error"
)

const (
	columnDelimiter = " | "
	noRowsText      = "Query returned no results."
	errorPrefix     = "Error: Could not execute query. "
)

// Result is the outcome of Executor.Run. Exactly one of Rows (with
// StatusRows), nothing (StatusNoRows) or Err (StatusError) is meaningful.
type Result struct {
	SQL       string        `json:"sql"`
	Status    Status        `json:"status"`
	Columns   []string      `json:"columns,omitempty"`
	Rows      [][]any       `json:"rows,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	Err       error         `json:"-"`
	Elapsed   time.Duration `json:"elapsed"`
}

func errorResult(sqlText string, err error) *Result {
	return &Result{SQL: sqlText, Status: StatusError, Err: err}
}

// Render formats the result as text for a prompt: a header line and one line
// per row, the no-results sentinel, or the error line.
func (r *Result) Render() string {
	switch r.Status {
	case StatusNoRows:
		return noRowsText
	case StatusError:
		msg := "unknown error"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		return errorPrefix + msg
	}

	var b strings.Builder
	b.WriteString(strings.Join(r.Columns, columnDelimiter))
	cells := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		b.WriteByte('\n')
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = FormatValue(row[i])
			}
		}
		b.WriteString(strings.Join(cells, columnDelimiter))
	}
	return b.String()
}

// FormatValue renders one cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
