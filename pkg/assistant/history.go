package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ekaya-inc/aria-engine/pkg/prompts"
)

// Role identifies who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an ordered chat transcript, oldest first. It is never mutated
// in place; Append returns a new History.
type History []Message

// wireMessage accepts both the console shape ({role, content}) and the web
// frontend shape ({type, sender, text}).
type wireMessage struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Type    *string `json:"type"`
	Sender  string  `json:"sender"`
	Text    string  `json:"text"`
}

// UnmarshalJSON decodes a mixed list of console and frontend entries.
// Frontend entries whose type is not "text" are skipped.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw []wireMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat history: %w", err)
	}

	out := make(History, 0, len(raw))
	for _, m := range raw {
		if m.Type != nil {
			if *m.Type != "text" {
				continue
			}
			out = append(out, Message{Role: roleOf(m.Sender), Content: m.Text})
			continue
		}
		out = append(out, Message{Role: roleOf(m.Role), Content: m.Content})
	}
	*h = out
	return nil
}

func roleOf(s string) Role {
	if strings.EqualFold(s, string(RoleUser)) {
		return RoleUser
	}
	return RoleAssistant
}

// Append returns a copy of h with the user question and the answer added.
func (h History) Append(question, answer string) History {
	out := make(History, len(h), len(h)+2)
	copy(out, h)
	return append(out,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Content: answer},
	)
}

// Last returns the most recent limit messages in original order.
func (h History) Last(limit int) History {
	if limit <= 0 || len(h) <= limit {
		return h
	}
	return h[len(h)-limit:]
}

// FormatHistory renders the last limit messages as "User: ..." and
// "Assistant: ..." lines.
func FormatHistory(h History, limit int) string {
	recent := h.Last(limit)
	if len(recent) == 0 {
		return prompts.NoHistory
	}

	lines := make([]string, len(recent))
	for i, m := range recent {
		speaker := "Assistant"
		if m.Role == RoleUser {
			speaker = "User"
		}
		lines[i] = speaker + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}
