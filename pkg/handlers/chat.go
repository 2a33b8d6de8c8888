package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/assistant"
)

const (
	sessionName       = "aria_session"
	sessionHistoryKey = "history"

	// maxSessionMessages bounds the transcript kept server-side.
	maxSessionMessages = 40
)

// Asker answers a question. *assistant.Service satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string, history assistant.History, progress assistant.ProgressFunc) (*assistant.Answer, error)
}

// ChatRequest is the POST /api/chat body. Message is accepted as an alias
// for Question. When History is omitted the server-side session supplies it.
type ChatRequest struct {
	Question string             `json:"question"`
	Message  string             `json:"message"`
	History  *assistant.History `json:"history"`
}

// ChatResponse carries the answer; Response repeats it for older clients.
type ChatResponse struct {
	Answer   string           `json:"answer"`
	Response string           `json:"response"`
	Intent   assistant.Intent `json:"intent"`
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	asker    Asker
	sessions sessions.Store
	logger   *zap.Logger
}

// NewChatHandler creates a ChatHandler. store may be nil to disable
// server-side history.
func NewChatHandler(asker Asker, store sessions.Store, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{asker: asker, sessions: store, logger: logger}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(req.Message)
	}
	if question == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_question", "No message provided."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var history assistant.History
	var session *sessions.Session
	if req.History != nil {
		history = *req.History
	} else if h.sessions != nil {
		session, history = h.loadSession(r)
	}

	answer, err := h.asker.Ask(r.Context(), question, history, nil)
	if err != nil {
		writeError(w, h.logger, err, "Sorry, something went wrong while answering your question.")
		return
	}

	if session != nil {
		h.saveSession(w, r, session, history.Append(question, answer.Answer))
	}

	resp := ChatResponse{Answer: answer.Answer, Response: answer.Answer, Intent: answer.Intent}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write chat response", zap.Error(err))
	}
}

// loadSession returns the caller's session and stored history. A corrupt or
// expired cookie yields a fresh session.
func (h *ChatHandler) loadSession(r *http.Request) (*sessions.Session, assistant.History) {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("Starting new chat session", zap.Error(err))
	}
	if session == nil {
		return nil, nil
	}

	raw, _ := session.Values[sessionHistoryKey].(string)
	if raw == "" {
		return session, nil
	}
	var history assistant.History
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		h.logger.Warn("Discarding unreadable chat history", zap.Error(err))
		return session, nil
	}
	return session, history
}

func (h *ChatHandler) saveSession(w http.ResponseWriter, r *http.Request, session *sessions.Session, history assistant.History) {
	encoded, err := json.Marshal(history.Last(maxSessionMessages))
	if err != nil {
		h.logger.Error("Failed to encode chat history", zap.Error(err))
		return
	}
	session.Values[sessionHistoryKey] = string(encoded)
	if err := session.Save(r, w); err != nil {
		h.logger.Error("Failed to save chat session", zap.Error(err))
	}
}

// NewSessionStore returns a filesystem-backed session store. dir "" uses
// the OS temp directory.
func NewSessionStore(dir, secret string, secure bool) *sessions.FilesystemStore {
	store := sessions.NewFilesystemStore(dir, []byte(secret))
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
