package prompts

import (
	"fmt"
	"strings"
)

// RouterSystemMessage frames the intent classification call.
const RouterSystemMessage = "You classify questions for a retail analytics assistant. Respond with JSON only."

// BuildRouterPrompt asks the model to classify the question into one of the
// intents and answer with {"intent": "..."}.
func BuildRouterPrompt(c QuestionContext, intents []string) string {
	var b strings.Builder

	b.WriteString("You are an intent classification agent for Aria, an Autonomous Retail Intelligence Agent ")
	fmt.Fprintf(&b, "that answers questions by querying a %s database.\n\n", c.dialectName())

	writeSection(&b, "Database Schema", c.SchemaText)
	writeHistory(&b, c.History)
	fmt.Fprintf(&b, "**User Question:**\n%q\n\n", c.Question)

	b.WriteString("**Categories:**\n")
	b.WriteString("- `greeting`: hello, thanks, or other conversational pleasantries.\n")
	b.WriteString("- `data_query`: anything the schema above can answer, including sales, products, stores, ")
	b.WriteString("inventory, spoilage, promotions, growth rates, trends, comparisons and rankings.\n")
	b.WriteString("- `off_topic`: not a greeting and unrelated to the retail business (trivia, weather, jokes, recipes).\n")
	b.WriteString("- `unanswerable`: a business question that needs data this schema does not hold ")
	b.WriteString("(competitors, market benchmarks, external forecasts).\n\n")

	b.WriteString("Lean towards `data_query` when a retail question could plausibly be answered from sales, product or date data. ")
	b.WriteString("Use `unanswerable` only when external data is clearly required.\n\n")

	fmt.Fprintf(&b, "Respond with a JSON object with a single key \"intent\" whose value is one of: %s.\n", strings.Join(intents, ", "))
	b.WriteString("\n**JSON Response:**\n")
	return b.String()
}
