package prompts

import (
	"fmt"
	"strings"
)

// NoHistory stands in for an empty conversation.
const NoHistory = "No previous conversation."

// QuestionContext is the shared context every question-answering prompt embeds.
type QuestionContext struct {
	Question   string
	SchemaText string
	Dialect    string // e.g. "Snowflake"; empty means generic SQL
	History    string // pre-formatted conversation, see assistant.FormatHistory
	Notes      []string
}

// DefaultDatabaseNotes describe known quirks of the retail warehouse.
var DefaultDatabaseNotes = []string{
	"DIM_DATE has duplicate DATE_KEY entries; use DISTINCT when selecting DATE_KEY from DIM_DATE.",
	"The data covers July 2025 to October 2025.",
	"Use NET_SALES for revenue calculations, not GROSS_SALES.",
	"DATE_KEY is an integer in YYYYMMDD form.",
}

func (c QuestionContext) dialectName() string {
	if c.Dialect == "" {
		return "SQL"
	}
	return c.Dialect
}

func writeSection(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "**%s:**\n---\n%s\n---\n\n", title, body)
}

func writeHistory(b *strings.Builder, history string) {
	if strings.TrimSpace(history) == "" {
		history = NoHistory
	}
	writeSection(b, "Previous Conversation", history)
}

func writeNotes(b *strings.Builder, notes []string, extra ...string) {
	if len(notes) == 0 && len(extra) == 0 {
		return
	}
	b.WriteString("**Database Notes:**\n")
	for _, n := range notes {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	for _, n := range extra {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
