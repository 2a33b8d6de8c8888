package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
)

// Asker is the part of the assistant the console needs.
type Asker interface {
	Ask(ctx context.Context, question string, history assistant.History, progress assistant.ProgressFunc) (*assistant.Answer, error)
}

func newChatCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive console chat with the assistant",
		Long: `Start an interactive session. Each answer keeps the conversation so
follow-up questions work. Type "exit" or "quit" to leave.`,
		Args: cobra.NoArgs,
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

			render := renderMarkdown
			if plain {
				render = nil
			}
			return chatLoop(cmd.Context(), a.assistant(client), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), render)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print answers without markdown rendering")
	return cmd
}

// chatLoop reads questions from in until EOF or exit/quit. Errors for one
// question are printed and the loop continues.
func chatLoop(ctx context.Context, asker Asker, in io.Reader, out, progressOut io.Writer, render func(string) (string, error)) error {
	fmt.Fprintln(out, "Aria retail assistant. Type 'exit' or 'quit' to leave.")

	var history assistant.History
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") || strings.EqualFold(question, "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		answer, err := asker.Ask(ctx, question, history, progressPrinter(progressOut))
		if err != nil {
			if llm.IsRateLimited(err) {
				fmt.Fprintln(out, "The model is rate limited. Please wait a moment and try again.")
			} else {
				fmt.Fprintf(out, "Sorry, something went wrong: %v\n", err)
			}
			continue
		}

		history = history.Append(question, answer.Answer)
		fmt.Fprintln(out, "\nAria:")
		fmt.Fprintln(out, formatAnswer(answer.Answer, render))
	}
}

func formatAnswer(text string, render func(string) (string, error)) string {
	if render == nil {
		return text
	}
	rendered, err := render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func renderMarkdown(text string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

// progressPrinter reports investigation phases on w.
func progressPrinter(w io.Writer) assistant.ProgressFunc {
	return func(ev assistant.ProgressEvent) {
		switch ev.Phase {
		case assistant.PhasePlanning:
			fmt.Fprintln(w, "  planning...")
		case assistant.PhaseGathering:
			if ev.Step != nil {
				fmt.Fprintf(w, "  [%d/%d] %s (%s)\n", ev.Step.Index, ev.Total, ev.Step.Question, ev.Step.Status)
			}
		case assistant.PhaseSynthesizing:
			fmt.Fprintln(w, "  writing answer...")
		}
	}
}
