// Package adapter executes pipeline stages against the external
// collaborators: guardrail and answer LLMs, the RAG orchestrator and the
// tool runner. The agent decides the next stage, the adapter runs it.
package adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/llm"
	"github.com/nidhogg/parley/internal/rag"
	"github.com/nidhogg/parley/internal/tools"
	"go.uber.org/zap"
)

// Adapter executes one command and returns it populated with results.
// Implementations are stateless per call; per-request state lives in the agent.
type Adapter interface {
	Answer(ctx context.Context, cmd domain.Command) (domain.Command, error)
}

// AgentAdapter drives the QA pipeline stages.
type AgentAdapter struct {
	guardrails llm.Caller
	llm        llm.Caller
	rag        *rag.Orchestrator
	tools      tools.Runner
	logger     *zap.Logger
}

// NewAgentAdapter creates an adapter over the shared sub-clients.
func NewAgentAdapter(guardrails, caller llm.Caller, orchestrator *rag.Orchestrator, runner tools.Runner, logger *zap.Logger) *AgentAdapter {
	return &AgentAdapter{
		guardrails: guardrails,
		llm:        caller,
		rag:        orchestrator,
		tools:      runner,
		logger:     logger,
	}
}

// Answer dispatches on command kind and fills in the stage result.
func (a *AgentAdapter) Answer(ctx context.Context, cmd domain.Command) (domain.Command, error) {
	a.logger.Info("executing stage",
		zap.String("kind", string(cmd.Kind())),
		zap.String("q_id", cmd.CorrelationID()))

	switch c := cmd.(type) {
	case *domain.Question:
		return c, nil
	case *domain.Check:
		return a.check(ctx, c)
	case *domain.Retrieve:
		return a.retrieve(ctx, c)
	case *domain.Rerank:
		return a.rerank(ctx, c)
	case *domain.Enhance:
		return a.enhance(ctx, c)
	case *domain.UseTools:
		return a.useTools(ctx, c)
	case *domain.LLMResponse:
		return a.respond(ctx, c)
	case *domain.FinalCheck:
		return a.finalCheck(ctx, c)
	default:
		return nil, fmt.Errorf("unsupported command kind %q", cmd.Kind())
	}
}

func (a *AgentAdapter) check(ctx context.Context, cmd *domain.Check) (domain.Command, error) {
	var verdict llm.PreCheck
	if err := a.guardrails.Use(ctx, cmd.Question, &verdict); err != nil {
		return nil, fmt.Errorf("pre-check: %w", err)
	}
	cmd.Approved = verdict.Approved
	cmd.ChainOfThought = verdict.ChainOfThought
	cmd.Response = verdict.Response
	return cmd, nil
}

func (a *AgentAdapter) retrieve(ctx context.Context, cmd *domain.Retrieve) (domain.Command, error) {
	vector, err := a.rag.Embed(ctx, cmd.Question)
	if err != nil {
		return nil, err
	}
	candidates, err := a.rag.Retrieve(ctx, vector)
	if err != nil {
		return nil, err
	}
	cmd.Candidates = candidates
	return cmd, nil
}

// rerank scores every candidate against the question and keeps the
// highest-scoring subset, best first.
func (a *AgentAdapter) rerank(ctx context.Context, cmd *domain.Rerank) (domain.Command, error) {
	scored := make([]domain.KBResponse, 0, len(cmd.Candidates))
	for _, candidate := range cmd.Candidates {
		score, err := a.rag.Score(ctx, cmd.Question, candidate.Description)
		if err != nil {
			return nil, fmt.Errorf("rerank %s: %w", candidate.ID, err)
		}
		candidate.Score = score
		scored = append(scored, candidate)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if n := a.rag.RankingCandidates(); len(scored) > n {
		scored = scored[:n]
	}
	cmd.Candidates = scored
	return cmd, nil
}

func (a *AgentAdapter) enhance(ctx context.Context, cmd *domain.Enhance) (domain.Command, error) {
	var result llm.Result
	if err := a.llm.Use(ctx, cmd.Question, &result); err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	cmd.Response = result.Response
	cmd.ChainOfThought = result.ChainOfThought
	return cmd, nil
}

func (a *AgentAdapter) useTools(ctx context.Context, cmd *domain.UseTools) (domain.Command, error) {
	result, memory, err := a.tools.Use(ctx, cmd.Question)
	if err != nil {
		return nil, fmt.Errorf("use tools: %w", err)
	}
	cmd.Response = result
	cmd.Memory = memory
	return cmd, nil
}

func (a *AgentAdapter) respond(ctx context.Context, cmd *domain.LLMResponse) (domain.Command, error) {
	var result llm.Result
	if err := a.llm.Use(ctx, cmd.Question, &result); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	cmd.Response = result.Response
	cmd.ChainOfThought = result.ChainOfThought
	return cmd, nil
}

func (a *AgentAdapter) finalCheck(ctx context.Context, cmd *domain.FinalCheck) (domain.Command, error) {
	var verdict llm.PostCheck
	if err := a.guardrails.Use(ctx, cmd.Question, &verdict); err != nil {
		return nil, fmt.Errorf("post-check: %w", err)
	}
	cmd.Approved = verdict.Approved
	cmd.Summary = verdict.Summary
	cmd.Issues = verdict.Issues
	cmd.Plausibility = verdict.Plausibility
	cmd.FactualConsistency = verdict.FactualConsistency
	cmd.Clarity = verdict.Clarity
	cmd.Completeness = verdict.Completeness
	return cmd, nil
}
