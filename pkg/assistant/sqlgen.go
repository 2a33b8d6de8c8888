package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
)

// ErrEmptySQL is returned when the model reply contains no SQL.
var ErrEmptySQL = errors.New("model returned no SQL")

// SQLGenerator turns a sub-question into a SQL string. It does not validate
// the SQL; the executor's guard does.
type SQLGenerator struct {
	client      llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// NewSQLGenerator returns a generator using client.
func NewSQLGenerator(client llm.LLMClient, temperature float64, logger *zap.Logger) *SQLGenerator {
	return &SQLGenerator{client: client, temperature: temperature, logger: logger.Named("sqlgen")}
}

// Generate asks the model for a query answering c.Question.
func (g *SQLGenerator) Generate(ctx context.Context, c prompts.QuestionContext) (string, error) {
	reply, err := complete(ctx, g.client, prompts.BuildSQLPrompt(c), prompts.SQLSystemMessage, g.temperature)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	sqlText := trimStrayPrefix(llm.ExtractCodeBlock(reply, "sql"))
	if sqlText == "" {
		return "", ErrEmptySQL
	}

	g.logger.Debug("Generated SQL", zap.String("question", c.Question), zap.String("sql", sqlText))
	return sqlText, nil
}

// trimStrayPrefix drops a single letter glued to a leading SELECT or WITH
// keyword ("lSELECT 1" -> "SELECT 1"), a known artifact of some models.
func trimStrayPrefix(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLetter(r) {
		return s
	}
	rest := s[size:]
	for _, kw := range []string{"SELECT", "WITH"} {
		if len(rest) >= len(kw) && strings.EqualFold(rest[:len(kw)], kw) && keywordEnds(rest[len(kw):]) {
			return rest
		}
	}
	return s
}

func keywordEnds(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}
