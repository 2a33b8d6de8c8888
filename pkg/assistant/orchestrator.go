package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/llm"
	"github.com/ekaya-inc/aria-engine/pkg/metrics"
	"github.com/ekaya-inc/aria-engine/pkg/prompts"
	"github.com/ekaya-inc/aria-engine/pkg/warehouse"
)

// ApologyReply is returned when an investigation gathered nothing.
const ApologyReply = "I apologize, but I'm unable to find relevant data to answer your question. " +
	"The question may be outside the scope of our available data, or there might be an issue with the data connection. " +
	"Please try rephrasing your question or ask about sales, inventory, or product data that should be available in our system."

// sqlGenerationFailed is the observation recorded when no SQL could be produced.
const sqlGenerationFailed = "Error: Could not generate a valid SQL query."

// Phase is a stage of one investigation.
type Phase string

const (
	PhasePlanning     Phase = "planning"
	PhaseGathering    Phase = "gathering"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseDone         Phase = "done"
)

// StopReason records why gathering ended.
type StopReason string

const (
	StopCompleted           StopReason = "completed"
	StopEmptyPlan           StopReason = "empty_plan"
	StopTimeBudget          StopReason = "time_budget"
	StopConsecutiveFailures StopReason = "consecutive_failures"
)

// QueryRunner executes one SQL string. *warehouse.Executor satisfies it.
type QueryRunner interface {
	Run(ctx context.Context, sql string) *warehouse.Result
}

// Step is one executed plan item.
type Step struct {
	Index    int              `json:"index"`
	Question string           `json:"question"`
	SQL      string           `json:"sql,omitempty"`
	Status   warehouse.Status `json:"status"`
	Rendered string           `json:"rendered"`
	Err      error            `json:"-"`
}

// Investigation is the full record of one Run.
type Investigation struct {
	Plan         string        `json:"plan"`
	SubQuestions []string      `json:"sub_questions"`
	Steps        []Step        `json:"steps"`
	StopReason   StopReason    `json:"stop_reason"`
	Observations string        `json:"observations"`
	Answer       string        `json:"answer"`
	Elapsed      time.Duration `json:"elapsed"`
}

// ProgressEvent is reported as an investigation advances. Step is set for
// gathering events once the step has run.
type ProgressEvent struct {
	Phase Phase
	Step  *Step
	Total int
}

// ProgressFunc receives progress events. It may be nil.
type ProgressFunc func(ProgressEvent)

// Input is what one investigation needs from the caller.
type Input struct {
	Question   string
	SchemaText string
	Dialect    string
	History    History
}

// OrchestratorConfig bounds an investigation.
type OrchestratorConfig struct {
	TimeBudget             time.Duration
	MaxConsecutiveFailures int
	HistoryLimit           int
	Temperature            float64
	Notes                  []string
}

// Orchestrator runs the plan, gather, synthesize pipeline.
type Orchestrator struct {
	client llm.LLMClient
	sqlgen *SQLGenerator
	runner QueryRunner
	clock  clockwork.Clock
	cfg    OrchestratorConfig
	logger *zap.Logger
}

// NewOrchestrator wires an orchestrator. A nil clock uses the real clock.
func NewOrchestrator(client llm.LLMClient, runner QueryRunner, clock clockwork.Clock, cfg OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		client: client,
		sqlgen: NewSQLGenerator(client, cfg.Temperature, logger),
		runner: runner,
		clock:  clock,
		cfg:    cfg,
		logger: logger.Named("orchestrator"),
	}
}

// Run investigates in.Question. Step failures become observation text and
// feed the failure breaker; rate-limit errors from any model call and
// planning or synthesis failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, in Input, progress ProgressFunc) (*Investigation, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	start := o.clock.Now()
	history := FormatHistory(in.History, o.cfg.HistoryLimit)
	qc := prompts.QuestionContext{
		Question:   in.Question,
		SchemaText: in.SchemaText,
		Dialect:    in.Dialect,
		History:    history,
		Notes:      o.cfg.Notes,
	}

	progress(ProgressEvent{Phase: PhasePlanning})
	plan, err := complete(ctx, o.client, prompts.BuildPlanPrompt(qc), prompts.PlanSystemMessage, o.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("plan investigation: %w", err)
	}

	inv := &Investigation{Plan: plan, SubQuestions: ParsePlan(plan)}
	o.logger.Info("Planned investigation",
		zap.Int("steps", len(inv.SubQuestions)),
		zap.Int("plan_lines", strings.Count(plan, "\n")+1))

	if len(inv.SubQuestions) == 0 {
		inv.StopReason = StopEmptyPlan
	} else {
		if err := o.gather(ctx, qc, inv, start, progress); err != nil {
			return nil, err
		}
	}
	metrics.GatherStopsTotal.WithLabelValues(string(inv.StopReason)).Inc()

	progress(ProgressEvent{Phase: PhaseSynthesizing})
	if strings.TrimSpace(inv.Observations) == "" {
		inv.Answer = ApologyReply
	} else {
		answer, err := complete(ctx, o.client,
			prompts.BuildSynthesisPrompt(in.Question, inv.Observations, history),
			prompts.SynthesisSystemMessage, o.cfg.Temperature)
		if err != nil {
			return nil, fmt.Errorf("synthesize answer: %w", err)
		}
		inv.Answer = answer
	}

	inv.Elapsed = o.clock.Since(start)
	progress(ProgressEvent{Phase: PhaseDone})
	return inv, nil
}

func (o *Orchestrator) gather(ctx context.Context, qc prompts.QuestionContext, inv *Investigation, start time.Time, progress ProgressFunc) error {
	var obs strings.Builder
	failures := 0
	inv.StopReason = StopCompleted

	for i, q := range inv.SubQuestions {
		if o.clock.Since(start) > o.cfg.TimeBudget {
			inv.StopReason = StopTimeBudget
			o.logger.Warn("Time budget exhausted, stopping investigation",
				zap.Duration("budget", o.cfg.TimeBudget), zap.Int("completed_steps", i))
			break
		}
		if failures >= o.cfg.MaxConsecutiveFailures {
			inv.StopReason = StopConsecutiveFailures
			o.logger.Warn("Too many consecutive failed steps, stopping investigation",
				zap.Int("failures", failures), zap.Int("completed_steps", i))
			break
		}

		step, err := o.runStep(ctx, qc, i+1, q)
		if err != nil {
			return err
		}

		switch step.Status {
		case warehouse.StatusRows:
			failures = 0
		case warehouse.StatusError:
			failures++
		}
		metrics.PlanStepsTotal.WithLabelValues(string(step.Status)).Inc()

		fmt.Fprintf(&obs, "Observation %d (from question '%s'):\n%s\n\n", step.Index, q, step.Rendered)
		inv.Steps = append(inv.Steps, step)
		progress(ProgressEvent{Phase: PhaseGathering, Step: &inv.Steps[len(inv.Steps)-1], Total: len(inv.SubQuestions)})
	}

	inv.Observations = obs.String()
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, qc prompts.QuestionContext, index int, question string) (Step, error) {
	step := Step{Index: index, Question: question}

	qc.Question = question
	sqlText, err := o.sqlgen.Generate(ctx, qc)
	if err != nil {
		if llm.IsRateLimited(err) {
			return step, err
		}
		o.logger.Warn("SQL generation failed", zap.Int("step", index), zap.Error(err))
		step.Status = warehouse.StatusError
		step.Err = err
		step.Rendered = sqlGenerationFailed
		return step, nil
	}

	res := o.runner.Run(ctx, sqlText)
	step.SQL = res.SQL
	step.Status = res.Status
	step.Err = res.Err
	step.Rendered = res.Render()
	return step, nil
}
