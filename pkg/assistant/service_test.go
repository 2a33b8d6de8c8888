package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

type staticSchema struct {
	snap *schema.Snapshot
	err  error
}

func (s staticSchema) Get(ctx context.Context) (*schema.Snapshot, error) {
	return s.snap, s.err
}

func retailSnapshot() *schema.Snapshot {
	return &schema.Snapshot{
		Dialect:  "Snowflake",
		Text:     "Table: FACT_SALES_DAILY\nColumns: NET_SALES (NUMBER)",
		LoadedAt: time.Now(),
	}
}

func newTestService(staged *stagedLLM, runner QueryRunner, src SchemaSource) *Service {
	client := staged.client()
	logger := zap.NewNop()
	return NewService(
		src,
		NewRouter(client, 0, logger),
		NewOrchestrator(client, runner, clockwork.NewFakeClock(), testOrchestratorConfig(), logger),
		6,
		logger,
	)
}

func TestService_FixedReplies(t *testing.T) {
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentGreeting, GreetingReply},
		{IntentOffTopic, OffTopicReply},
		{IntentUnanswerable, UnanswerableReply},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			staged := newStagedLLM().on(sysRouter, fmt.Sprintf(`{"intent": %q}`, tt.intent))
			runner := &fakeRunner{}
			svc := newTestService(staged, runner, staticSchema{snap: retailSnapshot()})

			ans, err := svc.Ask(context.Background(), "hello there", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.intent, ans.Intent)
			assert.Equal(t, tt.want, ans.Answer)
			assert.Nil(t, ans.Investigation)

			// The orchestrator never ran.
			assert.Equal(t, 0, staged.calls(sysPlan))
			assert.Equal(t, 0, runner.count())
		})
	}
}

func TestService_DataQuery(t *testing.T) {
	staged := newStagedLLM().
		on(sysRouter, `{"intent": "data_query"}`).
		on(sysPlan, "1. total sales last week").
		on(sysSQL, "SELECT SUM(NET_SALES) FROM FACT_SALES_DAILY").
		on(sysSynth, "Your total revenue for last week was $1,402,427.01.")
	runner := &fakeRunner{results: []*warehouse.Result{rowsResult([]string{"TOTAL"}, []any{1402427.01})}}
	svc := newTestService(staged, runner, staticSchema{snap: retailSnapshot()})

	ans, err := svc.Ask(context.Background(), "  What was revenue last week?  ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, IntentDataQuery, ans.Intent)
	assert.Equal(t, "Your total revenue for last week was $1,402,427.01.", ans.Answer)
	require.NotNil(t, ans.Investigation)
	assert.Len(t, ans.Investigation.Steps, 1)
	assert.Contains(t, staged.lastPrompt(sysRouter), `"What was revenue last week?"`)
}

func TestService_MalformedIntentFallsBackToUnanswerable(t *testing.T) {
	staged := newStagedLLM().on(sysRouter, "I think this is a data question")
	svc := newTestService(staged, &fakeRunner{}, staticSchema{snap: retailSnapshot()})

	ans, err := svc.Ask(context.Background(), "What about competitors?", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, IntentUnanswerable, ans.Intent)
	assert.Equal(t, UnanswerableReply, ans.Answer)
}

func TestService_RateLimitPropagates(t *testing.T) {
	staged := newStagedLLM().fail(sysRouter, rateLimitErr)
	svc := newTestService(staged, &fakeRunner{}, staticSchema{snap: retailSnapshot()})

	_, err := svc.Ask(context.Background(), "sales?", nil, nil)
	require.Error(t, err)
	assert.True(t, llm.IsRateLimited(err))
}

func TestService_RouterFailureFallsBackToUnanswerable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"endpoint error", llm.NewError(llm.ErrorTypeEndpoint, "connection refused", true, nil)},
		{"circuit open", llm.NewError(llm.ErrorTypeCircuit, "circuit breaker is open", false, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged := newStagedLLM().fail(sysRouter, tt.err)
			runner := &fakeRunner{}
			svc := newTestService(staged, runner, staticSchema{snap: retailSnapshot()})

			ans, err := svc.Ask(context.Background(), "sales?", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, IntentUnanswerable, ans.Intent)
			assert.Equal(t, UnanswerableReply, ans.Answer)
			assert.Nil(t, ans.Investigation)
		})
	}
}

func TestService_CanceledRouterCallPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	staged := newStagedLLM().fail(sysRouter, context.Canceled)
	svc := newTestService(staged, &fakeRunner{}, staticSchema{snap: retailSnapshot()})

	_, err := svc.Ask(ctx, "sales?", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_BlankQuestion(t *testing.T) {
	staged := newStagedLLM()
	svc := newTestService(staged, &fakeRunner{}, staticSchema{snap: retailSnapshot()})

	_, err := svc.Ask(context.Background(), "   ", nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	assert.Equal(t, 0, staged.calls(sysRouter))
}

func TestService_SchemaUnavailable(t *testing.T) {
	staged := newStagedLLM()
	src := staticSchema{err: fmt.Errorf("%w: %w", apperrors.ErrSchemaUnavailable, errors.New("login failed"))}
	svc := newTestService(staged, &fakeRunner{}, src)

	_, err := svc.Ask(context.Background(), "sales?", nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrSchemaUnavailable)
	assert.Equal(t, 0, staged.calls(sysRouter))
}

func TestService_HistoryNotMutated(t *testing.T) {
	staged := newStagedLLM().on(sysRouter, `{"intent": "greeting"}`)
	svc := newTestService(staged, &fakeRunner{}, staticSchema{snap: retailSnapshot()})

	history := History{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "Hello!"}}
	snapshot := append(History(nil), history...)

	_, err := svc.Ask(context.Background(), "thanks", history, nil)
	require.NoError(t, err)
	assert.Equal(t, snapshot, history)
	assert.Contains(t, staged.lastPrompt(sysRouter), "User: hi\nAssistant: Hello!")
}
