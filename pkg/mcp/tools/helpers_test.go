package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

type fakeAsker struct {
	answer *assistant.Answer
	err    error
	got    string
}

func (f *fakeAsker) Ask(_ context.Context, question string, _ assistant.History, _ assistant.ProgressFunc) (*assistant.Answer, error) {
	f.got = question
	return f.answer, f.err
}

type fakeSchema struct {
	snapshot   *schema.Snapshot
	err        error
	refreshErr error
	refreshed  int
}

func (f *fakeSchema) Get(context.Context) (*schema.Snapshot, error) { return f.snapshot, f.err }

func (f *fakeSchema) Refresh(context.Context) (*schema.Snapshot, error) {
	f.refreshed++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.snapshot, nil
}

type fakeRunner struct {
	result *warehouse.Result
	got    string
}

func (f *fakeRunner) Run(_ context.Context, q string) *warehouse.Result {
	f.got = q
	return f.result
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// toolResponse is the decoded JSON-RPC reply to a tools/call.
type toolResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterAll(s, deps)
	return s
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp toolResponse
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	return resp
}

// decodeText unmarshals the first text content of a successful or error result.
func decodeText(t *testing.T, resp toolResponse, v any) {
	t.Helper()
	require.NotNil(t, resp.Result, "expected a result, got error %+v", resp.Error)
	require.NotEmpty(t, resp.Result.Content)
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), v))
}

func listTools(t *testing.T, s *server.MCPServer) []string {
	t.Helper()
	raw, err := json.Marshal(s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`)))
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	names := make([]string, 0, len(resp.Result.Tools))
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	return names
}
