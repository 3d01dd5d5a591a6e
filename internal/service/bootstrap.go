package service

import (
	"github.com/nidhogg/parley/internal/bus"
	"github.com/nidhogg/parley/internal/domain"
)

// Bootstrap wires the service handlers onto a fresh bus: one command handler
// per pipeline entry point, notification fan-out for every event kind, and
// persistence hooks for terminal outcomes.
func Bootstrap(svc *Service) *bus.Bus {
	b := bus.New(svc.logger)

	b.HandleCommand(domain.KindQuestion, svc.Answer)
	b.HandleCommand(domain.KindSQLQuestion, svc.AnswerSQL)

	for _, kind := range []domain.EventKind{
		domain.EventResponse,
		domain.EventEvaluation,
		domain.EventFailedRequest,
		domain.EventRejectedRequest,
		domain.EventRejectedAnswer,
		domain.EventQuery,
	} {
		b.HandleEvent(kind, svc.Notify)
	}

	for _, kind := range []domain.EventKind{
		domain.EventResponse,
		domain.EventFailedRequest,
		domain.EventRejectedRequest,
		domain.EventRejectedAnswer,
		domain.EventQuery,
	} {
		b.HandleEvent(kind, svc.PersistOutcome)
	}
	b.HandleEvent(domain.EventEvaluation, svc.PersistEvaluation)

	return b
}
