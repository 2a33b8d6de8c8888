package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

// stagedLLM answers each prompt kind from its own script, keyed by system message.
type stagedLLM struct {
	mu      sync.Mutex
	scripts map[string][]string
	errs    map[string]error
	prompts map[string][]string
}

func newStagedLLM() *stagedLLM {
	return &stagedLLM{
		scripts: map[string][]string{},
		errs:    map[string]error{},
		prompts: map[string][]string{},
	}
}

func (s *stagedLLM) on(system string, replies ...string) *stagedLLM {
	s.scripts[system] = append(s.scripts[system], replies...)
	return s
}

func (s *stagedLLM) fail(system string, err error) *stagedLLM {
	s.errs[system] = err
	return s
}

func (s *stagedLLM) client() *llm.MockLLMClient {
	m := llm.NewMockLLMClient()
	m.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (*llm.GenerateResponseResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.prompts[system] = append(s.prompts[system], prompt)
		if err := s.errs[system]; err != nil {
			return nil, err
		}
		script := s.scripts[system]
		if len(script) == 0 {
			return nil, errors.New("unexpected prompt for " + system)
		}
		reply := script[0]
		if len(script) > 1 {
			s.scripts[system] = script[1:]
		}
		return &llm.GenerateResponseResult{Content: reply}, nil
	}
	return m
}

func (s *stagedLLM) calls(system string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts[system])
}

func (s *stagedLLM) lastPrompt(system string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prompts[system]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// fakeRunner returns canned results in order, repeating the last one.
type fakeRunner struct {
	mu      sync.Mutex
	results []*warehouse.Result
	queries []string
	onRun   func(call int)
}

func (f *fakeRunner) Run(ctx context.Context, sql string) *warehouse.Result {
	f.mu.Lock()
	call := len(f.queries)
	f.queries = append(f.queries, sql)
	hook := f.onRun
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	i := call
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := *f.results[i]
	r.SQL = sql
	return &r
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func rowsResult(cols []string, rows ...[]any) *warehouse.Result {
	return &warehouse.Result{Status: warehouse.StatusRows, Columns: cols, Rows: rows}
}

func noRowsResult() *warehouse.Result {
	return &warehouse.Result{Status: warehouse.StatusNoRows}
}

func errorResult(msg string) *warehouse.Result {
	return &warehouse.Result{Status: warehouse.StatusError, Err: errors.New(msg)}
}

var rateLimitErr = llm.NewError(llm.ErrorTypeRateLimit, "quota exceeded", true, nil)

// Shorthands for the system messages that identify each call.
const (
	sysRouter = prompts.RouterSystemMessage
	sysPlan   = prompts.PlanSystemMessage
	sysSQL    = prompts.SQLSystemMessage
	sysSynth  = prompts.SynthesisSystemMessage
)
