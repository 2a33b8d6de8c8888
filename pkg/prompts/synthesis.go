package prompts

import (
	"fmt"
	"strings"
)

// SynthesisSystemMessage frames the final answer call.
const SynthesisSystemMessage = "You are Aria, an Autonomous Retail Intelligence Agent. You explain retail data to store managers in plain language."

// BuildSynthesisPrompt asks for a short business answer grounded only in the
// gathered observations.
func BuildSynthesisPrompt(question, observations, history string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You have finished investigating the manager's question: %q\n\n", question)

	b.WriteString("Your investigation gathered the following data:\n")
	fmt.Fprintf(&b, "---\n%s\n---\n\n", strings.TrimSpace(observations))
	writeHistory(&b, history)

	b.WriteString("Answer the question directly and concisely.\n\n")
	b.WriteString("**Guidelines:**\n")
	b.WriteString("- Lead with the direct answer.\n")
	b.WriteString("- Keep it conversational and free of technical jargon.\n")
	b.WriteString("- Never mention queries, SQL, tables, columns or how dates were derived.\n")
	b.WriteString("- Mention an extra insight only if it is clearly useful.\n")
	b.WriteString("- Two or three sentences unless the question asks for a detailed analysis.\n")
	b.WriteString("- If a step reported an error, ignore it unless it leaves the question unanswered.\n")
	b.WriteString("- For a follow-up, briefly connect to the earlier discussion.\n\n")

	b.WriteString("Good: \"Total revenue last week was $1,402,427.01.\"\n")
	b.WriteString("Bad: \"To determine this I first found the latest date in the date dimension...\"\n")
	return b.String()
}
