package prompts

import (
	"fmt"
	"strings"
)

// SQLSystemMessage frames the SQL generation call.
const SQLSystemMessage = "You write single read-only SQL queries. Return only SQL."

// BuildSQLPrompt asks for one SELECT statement answering the sub-question.
func BuildSQLPrompt(c QuestionContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert %s data analyst. Write a single, valid, read-only %s query.\n\n",
		c.dialectName(), c.dialectName())

	b.WriteString("**Context Awareness:**\n")
	b.WriteString("Use the previous conversation to resolve follow-ups. ")
	b.WriteString("Pronouns such as \"it\", \"that\" or \"them\" refer to the most recently discussed items.\n\n")

	writeNotes(&b, c.Notes,
		"Always use explicit JOINs between tables.",
		"Only SELECT (or WITH ... SELECT) statements are allowed.",
	)
	writeSection(&b, "Database Schema", c.SchemaText)
	writeHistory(&b, c.History)
	fmt.Fprintf(&b, "**Question:**\n%q\n\n", c.Question)

	b.WriteString("Return only the SQL query in a ```sql code block, with no explanation.\n")
	return b.String()
}
