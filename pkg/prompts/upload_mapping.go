package prompts

import (
	"fmt"
	"strings"
)

// UploadMappingSystemMessage frames the CSV mapping call.
const UploadMappingSystemMessage = "You are a data pipeline expert. Respond with JSON only."

// TableColumns is one candidate destination table.
type TableColumns struct {
	Name    string
	Columns []ColumnType
}

// ColumnType is a column name and its declared type.
type ColumnType struct {
	Name string
	Type string
}

// BuildUploadMappingPrompt asks the model to pick a destination table for a
// CSV and map each CSV column onto it.
func BuildUploadMappingPrompt(csvColumns []string, samples [][]string, tables []TableColumns) string {
	var b strings.Builder

	b.WriteString("A user wants to upload a CSV file into the warehouse.\n")
	b.WriteString("Based on the CSV column names (and sample rows), choose the single most logical destination table ")
	b.WriteString("and map every CSV column onto a column of that table.\n\n")

	b.WriteString("**Instructions:**\n")
	b.WriteString("1. Set \"suggested_table\" to the best matching table name, exactly as listed below.\n")
	b.WriteString("2. Set \"column_mapping\" to an object whose keys are the CSV column names and whose values are ")
	b.WriteString("the matching table column names, or null when nothing matches.\n")
	b.WriteString("3. Return only the JSON object.\n\n")

	b.WriteString("**Available Tables:**\n---\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "Table `%s`:\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.Type)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "**CSV Columns:**\n---\n%s\n---\n\n", strings.Join(csvColumns, ", "))

	if len(samples) > 0 {
		b.WriteString("**Sample Rows:**\n---\n")
		for _, row := range samples {
			b.WriteString(strings.Join(row, ", "))
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("**JSON Response:**\n")
	return b.String()
}
