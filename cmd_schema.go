package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	var (
		refresh bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the warehouse schema the assistant sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			get := a.schema.Get
			if refresh {
				get = a.schema.Refresh
			}
			snapshot, err := get(cmd.Context())
			if err != nil {
				return err
			}
			return writeSchema(cmd.OutOrStdout(), snapshot, format)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload from the warehouse instead of using the cache")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text or yaml")
	return cmd
}

func writeSchema(w io.Writer, snapshot *schema.Snapshot, format string) error {
	switch format {
	case "text":
		fmt.Fprintf(w, "-- %s, %d tables\n%s\n", snapshot.Dialect, len(snapshot.Tables), snapshot.Text)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(struct {
			Dialect string         `yaml:"dialect"`
			Tables  []schema.Table `yaml:"tables"`
		}{snapshot.Dialect, snapshot.Tables})
	default:
		return fmt.Errorf("unknown output format %q (expected text or yaml)", format)
	}
}
