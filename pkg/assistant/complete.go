package assistant

import (
	"context"
	"strings"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
)

// complete runs one model call and returns the trimmed completion.
func complete(ctx context.Context, client llm.LLMClient, prompt, system string, temperature float64) (string, error) {
	res, err := client.GenerateResponse(ctx, prompt, system, temperature)
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(client.GetModel(), string(llm.GetErrorType(err))).Inc()
		return "", err
	}
	metrics.LLMCallsTotal.WithLabelValues(client.GetModel(), "ok").Inc()
	return strings.TrimSpace(res.Content), nil
}
