package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/jsonutil"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
)

// Intent is the closed set of question categories.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentDataQuery    Intent = "data_query"
	IntentOffTopic     Intent = "off_topic"
	IntentUnanswerable Intent = "unanswerable"
)

// Intents lists every valid intent.
var Intents = []Intent{IntentGreeting, IntentDataQuery, IntentOffTopic, IntentUnanswerable}

// ParseIntent matches s against the known intents, ignoring case and surrounding space or backticks.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "`"))
	for _, i := range Intents {
		if s == string(i) {
			return i, true
		}
	}
	return "", false
}

// IntentError reports a router reply that did not name a known intent.
type IntentError struct {
	Raw   string
	Cause error
}

func (e *IntentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unrecognized intent reply: %v", e.Cause)
	}
	return fmt.Sprintf("unrecognized intent reply: %q", e.Raw)
}

func (e *IntentError) Unwrap() error {
	return e.Cause
}

// Router classifies questions with one model call.
type Router struct {
	client      llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// NewRouter returns a router using client.
func NewRouter(client llm.LLMClient, temperature float64, logger *zap.Logger) *Router {
	return &Router{client: client, temperature: temperature, logger: logger.Named("router")}
}

// Classify returns the intent of c.Question. A reply that does not name a
// known intent yields an *IntentError; model failures are returned as is.
func (r *Router) Classify(ctx context.Context, c prompts.QuestionContext) (Intent, error) {
	names := make([]string, len(Intents))
	for i, in := range Intents {
		names[i] = string(in)
	}

	reply, err := complete(ctx, r.client, prompts.BuildRouterPrompt(c, names), prompts.RouterSystemMessage, r.temperature)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}

	parsed, err := llm.ParseJSONResponse[struct {
		Intent json.RawMessage `json:"intent"`
	}](reply)
	if err != nil {
		return "", &IntentError{Raw: reply, Cause: err}
	}

	intent, ok := ParseIntent(jsonutil.FlexibleString(parsed.Intent))
	if !ok {
		return "", &IntentError{Raw: reply}
	}

	r.logger.Debug("Classified question", zap.String("intent", string(intent)))
	return intent, nil
}
