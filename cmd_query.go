package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL",
		Short: "Run one read-only SELECT through the SQL guard",
		Long: `Run a single SELECT statement against the warehouse. The statement goes
through the same safety checks as assistant-generated SQL, so writes, DDL
and multiple statements are rejected.`,
		Example: `  aria query "SELECT STORE_NAME, CITY FROM DIM_STORE"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.executor.Run(cmd.Context(), strings.Join(args, " "))
			return writeResult(cmd.OutOrStdout(), res)
		},
	}
}

func writeResult(w io.Writer, res *warehouse.Result) error {
	switch res.Status {
	case warehouse.StatusError:
		return res.Err
	case warehouse.StatusNoRows:
		fmt.Fprintln(w, res.Render())
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = warehouse.FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()

	suffix := ""
	if res.Truncated {
		suffix = " (truncated)"
	}
	fmt.Fprintf(w, "%d rows in %s%s\n", len(res.Rows), res.Elapsed.Round(time.Millisecond), suffix)
	return nil
}
