package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/dashboard"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
	"github.com/ekaya-inc/aria-engine/pkg/upload"
)

type askCall struct {
	question string
	history  assistant.History
}

type fakeAsker struct {
	mu     sync.Mutex
	calls  []askCall
	answer *assistant.Answer
	err    error
}

func (f *fakeAsker) Ask(_ context.Context, question string, history assistant.History, _ assistant.ProgressFunc) (*assistant.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, askCall{question: question, history: history})
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &assistant.Answer{Answer: "answer to " + question, Intent: assistant.IntentDataQuery}, nil
}

type fakePlanner struct {
	plan *upload.Plan
	err  error
	got  string
}

func (f *fakePlanner) Analyze(_ context.Context, filename string) (*upload.Plan, error) {
	f.got = filename
	if f.err != nil {
		return nil, f.err
	}
	plan := *f.plan
	plan.Filename = filename
	return &plan, nil
}

type fakeLoader struct {
	got upload.Request
	out *upload.Outcome
	err error
}

func (f *fakeLoader) Execute(_ context.Context, req upload.Request) (*upload.Outcome, error) {
	f.got = req
	return f.out, f.err
}

type fakeDashboard struct {
	summary   *dashboard.Summary
	analytics *dashboard.Analytics
	err       error
}

func (f *fakeDashboard) Summary(context.Context) (*dashboard.Summary, error) {
	return f.summary, f.err
}

func (f *fakeDashboard) Analytics(context.Context) (*dashboard.Analytics, error) {
	return f.analytics, f.err
}

type fakeSchema struct {
	snapshot   *schema.Snapshot
	err        error
	refreshErr error
	refreshed  int
}

func (f *fakeSchema) Get(context.Context) (*schema.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeSchema) Refresh(context.Context) (*schema.Snapshot, error) {
	f.refreshed++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.snapshot, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
