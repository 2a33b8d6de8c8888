package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
)

func newAskCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer one question and exit",
		Example: `  aria ask "Which store had the highest spoilage last month?"
  aria ask --json "Total banana sales in October"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.llmClient(cmd.Context())
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			answer, err := a.assistant(client).Ask(cmd.Context(), question, nil, progressPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			if asJSON {
				return writeInvestigation(cmd.OutOrStdout(), answer)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatAnswer(answer.Answer, renderMarkdown))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the answer with its plan and queries as JSON")
	return cmd
}

func writeInvestigation(w io.Writer, answer *assistant.Answer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Answer        string                   `json:"answer"`
		Intent        assistant.Intent         `json:"intent"`
		Investigation *assistant.Investigation `json:"investigation,omitempty"`
	}{answer.Answer, answer.Intent, answer.Investigation})
}
