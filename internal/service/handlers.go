// Package service hosts the command and event handlers the bus dispatches
// to: the answer loops that alternate adapter execution with agent decisions,
// the notification fan-out and the persistence hooks.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nidhogg/parley/internal/adapter"
	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/notify"
	"github.com/nidhogg/parley/internal/prompt"
	"github.com/nidhogg/parley/internal/store"
	"go.uber.org/zap"
)

// ErrInvalidQuestion is returned when a question command has no question.
var ErrInvalidQuestion = errors.New("no question asked")

// Service owns the long-lived collaborators shared across requests. Per-request
// state lives in the agent each handler call creates.
type Service struct {
	adapter    adapter.Adapter
	sqlAdapter adapter.Adapter
	prompts    *prompt.Library
	sqlPrompts *prompt.Library
	notifier   notify.Notifier
	store      *store.Store
	logger     *zap.Logger
}

// New creates the service layer. The store may be nil when persistence is
// disabled (CLI runs, tests).
func New(qa, sql adapter.Adapter, prompts, sqlPrompts *prompt.Library, notifier notify.Notifier, st *store.Store, logger *zap.Logger) *Service {
	return &Service{
		adapter:    qa,
		sqlAdapter: sql,
		prompts:    prompts,
		sqlPrompts: sqlPrompts,
		notifier:   notifier,
		store:      st,
		logger:     logger,
	}
}

// Answer runs the QA pipeline for one question: the adapter executes the
// current stage, the agent decides the next one, until the agent reaches a
// terminal state. The terminal response and evaluation are returned as events
// for the bus to fan out.
func (s *Service) Answer(ctx context.Context, cmd domain.Command) ([]domain.Event, error) {
	question, ok := cmd.(*domain.Question)
	if !ok || question.Question == "" {
		return nil, ErrInvalidQuestion
	}

	agent, err := domain.NewAgent(question, s.prompts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			return nil, ErrInvalidQuestion
		}
		return nil, err
	}

	if err := s.run(ctx, agent, s.adapter, question); err != nil {
		return nil, err
	}

	if response := agent.Response(); response != nil {
		agent.Emit(response)
	}
	if evaluation := agent.Evaluation(); evaluation != nil {
		agent.Emit(evaluation)
	}
	return agent.CollectEvents(), nil
}

// AnswerSQL runs the SQL-generation pipeline for one question.
func (s *Service) AnswerSQL(ctx context.Context, cmd domain.Command) ([]domain.Event, error) {
	question, ok := cmd.(*domain.SQLQuestion)
	if !ok || question.Question == "" {
		return nil, ErrInvalidQuestion
	}

	agent, err := domain.NewSQLAgent(question, s.sqlPrompts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			return nil, ErrInvalidQuestion
		}
		return nil, err
	}

	if err := s.run(ctx, agent, s.sqlAdapter, question); err != nil {
		return nil, err
	}

	if response := agent.Response(); response != nil {
		agent.Emit(response)
	}
	return agent.CollectEvents(), nil
}

// updater is the decision half of the loop; both agents satisfy it.
type updater interface {
	Update(cmd domain.Command) (domain.Command, error)
	Answered() bool
}

func (s *Service) run(ctx context.Context, agent updater, exec adapter.Adapter, first domain.Command) error {
	current := first
	for !agent.Answered() && current != nil {
		s.logger.Info("calling adapter",
			zap.String("kind", string(current.Kind())),
			zap.String("q_id", current.CorrelationID()))

		updated, err := exec.Answer(ctx, current)
		if err != nil {
			return fmt.Errorf("adapter %s: %w", current.Kind(), err)
		}
		current, err = agent.Update(updated)
		if err != nil {
			return fmt.Errorf("agent %s: %w", updated.Kind(), err)
		}
	}
	return nil
}

// Notify delivers one event's plain-text rendering to the request's
// destination.
func (s *Service) Notify(ctx context.Context, ev domain.Event) error {
	return s.notifier.Send(ctx, ev.CorrelationID(), ev.Text())
}

// PersistOutcome stores the terminal answer for later retrieval over the API.
func (s *Service) PersistOutcome(ctx context.Context, ev domain.Event) error {
	if s.store == nil {
		return nil
	}

	answer := &store.Answer{QID: ev.CorrelationID()}
	switch e := ev.(type) {
	case *domain.Response:
		answer.Question = e.Question
		answer.Response = e.Response
		answer.Status = "answered"
	case *domain.RejectedRequest:
		answer.Question = e.Question
		answer.Response = e.Response
		answer.Status = "rejected"
	case *domain.RejectedAnswer:
		answer.Question = e.Question
		answer.Response = e.Response
		answer.Status = "rejected"
	case *domain.FailedRequest:
		answer.Question = e.Question
		answer.Response = e.Exception
		answer.Status = "failed"
	case *domain.Query:
		answer.Question = e.Question
		answer.Response = e.Response
		answer.Status = "answered"
	default:
		return nil
	}
	return s.store.SaveAnswer(ctx, answer)
}

// PersistEvaluation stores the guardrail post-check verdict.
func (s *Service) PersistEvaluation(ctx context.Context, ev domain.Event) error {
	if s.store == nil {
		return nil
	}
	evaluation, ok := ev.(*domain.Evaluation)
	if !ok {
		return nil
	}
	return s.store.SaveEvaluation(ctx, &store.EvaluationRecord{
		QID:                evaluation.QID,
		Approved:           evaluation.Approved,
		Summary:            evaluation.Summary,
		Issues:             evaluation.Issues,
		Plausibility:       evaluation.Plausibility,
		FactualConsistency: evaluation.FactualConsistency,
		Clarity:            evaluation.Clarity,
		Completeness:       evaluation.Completeness,
	})
}
