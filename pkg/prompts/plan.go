package prompts

import (
	"fmt"
	"strings"
)

// PlanSystemMessage frames the planning call.
const PlanSystemMessage = "You are Aria, an Autonomous Retail Intelligence Agent. You plan data investigations."

// BuildPlanPrompt asks for a plain numbered list of sub-questions, each
// answerable by one query.
func BuildPlanPrompt(c QuestionContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A store manager has asked: %q\n\n", c.Question)

	b.WriteString("**Context Awareness:**\n")
	b.WriteString("If this is a follow-up, build on the previous conversation. ")
	b.WriteString("\"What about the others?\" after a product question means the remaining products; ")
	b.WriteString("\"last week\" after \"this week\" means the same analysis shifted one week back.\n\n")

	b.WriteString("Using the database schema, write a step-by-step plan to investigate the question.\n")
	b.WriteString("The plan must be a plain numbered list (\"1. ...\", \"2. ...\"). ")
	b.WriteString("Each item is one clear question that a single database query can answer.\n")
	b.WriteString("Do not include markdown, rationale, headings or any other text.\n\n")

	writeNotes(&b, c.Notes,
		"Keep each step simple and focused on one question.",
		"Break growth rates, trends and comparisons into multiple steps.",
	)
	writeSection(&b, "Database Schema", c.SchemaText)
	writeHistory(&b, c.History)

	b.WriteString("**Analysis Plan:**\n")
	return b.String()
}
