package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/logging"
)

const maxArgumentLogLength = 200

// MCPToolLogger logs each MCP tools/call with its tool name, sanitized
// arguments and outcome. Other JSON-RPC methods pass through unlogged.
// Pass nil logger to disable logging.
func MCPToolLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var call rpcCall
			if json.Unmarshal(body, &call) != nil || call.Method != "tools/call" {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &bodyRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("tool", call.Params.Name),
				zap.Any("arguments", sanitizeArguments(call.Params.Arguments)),
				zap.Duration("duration", time.Since(start)),
			}
			if msg, failed := callFailure(recorder.body.Bytes()); failed {
				logger.Info("MCP tool call failed", append(fields, zap.String("error", msg))...)
				return
			}
			logger.Info("MCP tool call", fields...)
		})
	}
}

type rpcCall struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

type rpcResult struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Result *struct {
		IsError bool `json:"isError"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
}

// callFailure reports a JSON-RPC error or a tool result flagged isError.
// Streamed (SSE) responses are not inspected.
func callFailure(body []byte) (string, bool) {
	var res rpcResult
	if json.Unmarshal(body, &res) != nil {
		return "", false
	}
	if res.Error != nil {
		return res.Error.Message, true
	}
	if res.Result != nil && res.Result.IsError {
		msg := ""
		if len(res.Result.Content) > 0 {
			msg = res.Result.Content[0].Text
		}
		return logging.TruncateString(msg, maxArgumentLogLength), true
	}
	return "", false
}

type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// sanitizeArguments redacts secret-looking keys, runs SQL through the query
// sanitizer and truncates long strings.
func sanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		lower := strings.ToLower(k)
		switch {
		case containsAny(lower, "password", "secret", "token", "key", "credential"):
			out[k] = logging.RedactedText
		case lower == "sql" || lower == "query":
			s, _ := v.(string)
			out[k] = logging.SanitizeQuery(s)
		default:
			if s, ok := v.(string); ok {
				out[k] = logging.TruncateString(s, maxArgumentLogLength)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
