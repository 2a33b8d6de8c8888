package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the warehouse and language model connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			failed := false

			if err := pingWarehouse(ctx, a); err != nil {
				failed = true
				fmt.Fprintf(out, "warehouse (%s): FAILED: %v\n", a.cfg.Warehouse.Type, err)
			} else {
				fmt.Fprintf(out, "warehouse (%s): ok\n", a.cfg.Warehouse.Type)
			}

			client, err := a.llmClient(ctx)
			if err != nil {
				failed = true
				fmt.Fprintf(out, "llm: FAILED: %v\n", err)
			} else {
				res := llm.NewConnectionTester(30 * time.Second).Test(ctx, client)
				if !res.Success {
					failed = true
					fmt.Fprintf(out, "llm: FAILED: %s\n", res.Message)
				} else {
					fmt.Fprintf(out, "llm: %s\n", res.Message)
				}
			}

			if failed {
				return fmt.Errorf("connection check failed")
			}
			return nil
		},
	}
}

func pingWarehouse(ctx context.Context, a *app) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Warehouse.QueryTimeout)
	defer cancel()
	return a.executor.Ping(ctx)
}
