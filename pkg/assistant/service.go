// Package assistant answers retail questions: it classifies intent, then
// plans, gathers query results and synthesizes an answer for data questions.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/logging"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
	"github.com/ekaya-inc/aria-engine/pkg/schema"
)

// Fixed replies for the intents that never reach the warehouse.
const (
	GreetingReply = "Hello! I'm Aria, your Autonomous Retail Intelligence Agent. How can I help you analyze our data today?"

	OffTopicReply = "I'm sorry, but I can only answer questions related to our retail data. " +
		"Please ask something about sales, inventory, or product performance."

	UnanswerableReply = "I understand you're asking about business/retail topics, but I don't have the necessary data in our system to answer that question. " +
		"I can help you with questions about sales, inventory, product performance, and other data that's available in our Snowflake database. " +
		"Could you try rephrasing your question to focus on data we have available?"
)

// SchemaSource supplies the current schema snapshot.
type SchemaSource interface {
	Get(ctx context.Context) (*schema.Snapshot, error)
}

// Answer is the reply to one question.
type Answer struct {
	Answer        string         `json:"answer"`
	Intent        Intent         `json:"intent"`
	Investigation *Investigation `json:"-"`
}

// Service is the entry point for every surface (HTTP, MCP, CLI).
type Service struct {
	schema       SchemaSource
	router       *Router
	orchestrator *Orchestrator
	historyLimit int
	logger       *zap.Logger
}

// NewService wires a Service.
func NewService(schemaSource SchemaSource, router *Router, orchestrator *Orchestrator, historyLimit int, logger *zap.Logger) *Service {
	return &Service{
		schema:       schemaSource,
		router:       router,
		orchestrator: orchestrator,
		historyLimit: historyLimit,
		logger:       logger.Named("assistant"),
	}
}

// Ask answers question given the prior conversation. The caller owns history
// and appends the turn afterwards.
//
// Errors: apperrors.ErrInvalidRequest for a blank question,
// apperrors.ErrSchemaUnavailable when the schema cannot be loaded, and model
// errors (check llm.IsRateLimited) from planning or synthesis. A failed
// classification answers as unanswerable unless the model was rate limited or
// ctx is done.
func (s *Service) Ask(ctx context.Context, question string, history History, progress ProgressFunc) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", apperrors.ErrInvalidRequest)
	}

	snap, err := s.schema.Get(ctx)
	if err != nil {
		return nil, err
	}

	intent, err := s.router.Classify(ctx, prompts.QuestionContext{
		Question:   question,
		SchemaText: snap.Text,
		Dialect:    snap.Dialect,
		History:    FormatHistory(history, s.historyLimit),
	})
	if err != nil {
		if llm.IsRateLimited(err) || ctx.Err() != nil {
			return nil, err
		}
		fields := []zap.Field{zap.String("error", logging.SanitizeError(err))}
		var intentErr *IntentError
		if errors.As(err, &intentErr) {
			fields = append(fields, zap.String("reply", intentErr.Raw))
		}
		s.logger.Warn("Could not classify question, treating as unanswerable", fields...)
		intent = IntentUnanswerable
	}
	metrics.QuestionsTotal.WithLabelValues(string(intent)).Inc()

	answer := &Answer{Intent: intent}
	switch intent {
	case IntentGreeting:
		answer.Answer = GreetingReply
	case IntentOffTopic:
		answer.Answer = OffTopicReply
	case IntentUnanswerable:
		answer.Answer = UnanswerableReply
	case IntentDataQuery:
		inv, err := s.orchestrator.Run(ctx, Input{
			Question:   question,
			SchemaText: snap.Text,
			Dialect:    snap.Dialect,
			History:    history,
		}, progress)
		if err != nil {
			return nil, err
		}
		answer.Answer = inv.Answer
		answer.Investigation = inv
	}

	s.logger.Info("Answered question",
		zap.String("intent", string(intent)),
		zap.Int("answer_len", len(answer.Answer)))
	return answer, nil
}
