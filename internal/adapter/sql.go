package adapter

import (
	"context"
	"fmt"

	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/llm"
	"go.uber.org/zap"
)

// SQLAdapter drives the SQL-generation pipeline stages. Each stage is a
// structured LLM call decoding into its stage schema.
type SQLAdapter struct {
	guardrails llm.Caller
	llm        llm.Caller
	logger     *zap.Logger
}

// NewSQLAdapter creates a SQL pipeline adapter.
func NewSQLAdapter(guardrails, caller llm.Caller, logger *zap.Logger) *SQLAdapter {
	return &SQLAdapter{guardrails: guardrails, llm: caller, logger: logger}
}

// Answer dispatches on command kind and fills in the stage result.
func (a *SQLAdapter) Answer(ctx context.Context, cmd domain.Command) (domain.Command, error) {
	a.logger.Info("executing sql stage",
		zap.String("kind", string(cmd.Kind())),
		zap.String("q_id", cmd.CorrelationID()))

	switch c := cmd.(type) {
	case *domain.SQLQuestion:
		return c, nil
	case *domain.SQLCheck:
		var verdict llm.PreCheck
		if err := a.guardrails.Use(ctx, c.Question, &verdict); err != nil {
			return nil, fmt.Errorf("sql check: %w", err)
		}
		c.Approved = verdict.Approved
		c.ChainOfThought = verdict.ChainOfThought
		c.Response = verdict.Response
		return c, nil
	case *domain.SQLGrounding:
		var result llm.Grounding
		if err := a.llm.Use(ctx, c.Question, &result); err != nil {
			return nil, fmt.Errorf("sql grounding: %w", err)
		}
		c.ColumnMappings = result.ColumnMappings
		c.TableMappings = result.TableMappings
		return c, nil
	case *domain.SQLFilter:
		var result llm.Filter
		if err := a.llm.Use(ctx, c.Question, &result); err != nil {
			return nil, fmt.Errorf("sql filter: %w", err)
		}
		c.Conditions = result.Conditions
		return c, nil
	case *domain.SQLJoinInference:
		var result llm.Join
		if err := a.llm.Use(ctx, c.Question, &result); err != nil {
			return nil, fmt.Errorf("sql join inference: %w", err)
		}
		c.Joins = result.Joins
		return c, nil
	case *domain.SQLAggregation:
		var result llm.Aggregation
		if err := a.llm.Use(ctx, c.Question, &result); err != nil {
			return nil, fmt.Errorf("sql aggregation: %w", err)
		}
		c.Aggregations = result.Aggregations
		c.GroupByColumns = result.GroupByColumns
		c.IsAggregationQuery = result.IsAggregationQuery
		return c, nil
	case *domain.SQLConstruction:
		var result llm.Construction
		if err := a.llm.Use(ctx, c.Question, &result); err != nil {
			return nil, fmt.Errorf("sql construction: %w", err)
		}
		c.Query = result.Query
		return c, nil
	case *domain.SQLValidation:
		var verdict llm.Validation
		if err := a.guardrails.Use(ctx, c.Question, &verdict); err != nil {
			return nil, fmt.Errorf("sql validation: %w", err)
		}
		c.Approved = verdict.Approved
		c.Summary = verdict.Summary
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported command kind %q", cmd.Kind())
	}
}
