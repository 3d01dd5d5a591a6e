package domain

import (
	"encoding/json"
	"fmt"

	"github.com/nidhogg/parley/internal/prompt"
)

// SQLAgent is the per-request state machine for the SQL-generation pipeline:
// SQLQuestion → SQLCheck → SQLGrounding → SQLFilter → SQLJoinInference →
// SQLAggregation → SQLConstruction → SQLValidation → terminal. Each stage
// writes its partial result onto the constructions accumulator, which the
// construction stage reads to synthesize one SQL string.
type SQLAgent struct {
	machine

	prompts       *prompt.Library
	constructions *SQLConstruction
	sql           string
}

// NewSQLAgent builds a SQL agent bound to the incoming question. A missing
// required prompt template is a configuration error surfaced here.
func NewSQLAgent(q *SQLQuestion, prompts *prompt.Library) (*SQLAgent, error) {
	if q == nil || q.Question == "" {
		return nil, ErrEmptyQuestion
	}
	for _, name := range prompt.SQLNames {
		if !prompts.Has(name) {
			return nil, fmt.Errorf("prompt template %q not found", name)
		}
	}

	a := &SQLAgent{
		machine: machine{question: q.Question, qID: q.QID},
		prompts: prompts,
		constructions: &SQLConstruction{
			Base: Base{Question: q.Question, QID: q.QID},
		},
	}
	a.transitions = map[Kind]transition{
		KindSQLQuestion:      a.prepareCheck,
		KindSQLCheck:         a.prepareGrounding,
		KindSQLGrounding:     a.prepareFilter,
		KindSQLFilter:        a.prepareJoinInference,
		KindSQLJoinInference: a.prepareAggregation,
		KindSQLAggregation:   a.prepareConstruction,
		KindSQLConstruction:  a.prepareValidation,
		KindSQLValidation:    a.prepareQuery,
	}
	return a, nil
}

// Constructions exposes the accumulator for inspection after a run.
func (a *SQLAgent) Constructions() *SQLConstruction { return a.constructions }

func (a *SQLAgent) prepareCheck(cmd Command) (Command, error) {
	question := cmd.(*SQLQuestion)
	a.constructions.Schema = question.Schema

	p, err := a.prompts.Render("check", map[string]string{
		"question": a.question,
	})
	if err != nil {
		return nil, err
	}
	return &SQLCheck{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareGrounding(cmd Command) (Command, error) {
	check := cmd.(*SQLCheck)
	if !check.Approved {
		a.answered = true
		a.response = &RejectedRequest{
			Base:     Base{Question: a.question, QID: a.qID},
			Response: check.Response,
		}
		return nil, nil
	}

	p, err := a.prompts.Render("ground", map[string]string{
		"question":    a.question,
		"schema_info": mustJSON(a.constructions.Schema),
	})
	if err != nil {
		return nil, err
	}
	return &SQLGrounding{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareFilter(cmd Command) (Command, error) {
	grounding := cmd.(*SQLGrounding)
	a.constructions.ColumnMappings = grounding.ColumnMappings
	a.constructions.TableMappings = grounding.TableMappings

	p, err := a.prompts.Render("filter", map[string]string{
		"question":        a.question,
		"column_mappings": mustJSON(grounding.ColumnMappings),
		"table_mappings":  mustJSON(grounding.TableMappings),
	})
	if err != nil {
		return nil, err
	}
	return &SQLFilter{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareJoinInference(cmd Command) (Command, error) {
	filter := cmd.(*SQLFilter)
	a.constructions.Conditions = filter.Conditions

	p, err := a.prompts.Render("join", map[string]string{
		"question":       a.question,
		"table_mappings": mustJSON(a.constructions.TableMappings),
		"schema_info":    mustJSON(a.constructions.Schema),
	})
	if err != nil {
		return nil, err
	}
	return &SQLJoinInference{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareAggregation(cmd Command) (Command, error) {
	join := cmd.(*SQLJoinInference)
	a.constructions.Joins = join.Joins

	p, err := a.prompts.Render("aggregate", map[string]string{
		"question":        a.question,
		"column_mappings": mustJSON(a.constructions.ColumnMappings),
	})
	if err != nil {
		return nil, err
	}
	return &SQLAggregation{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareConstruction(cmd Command) (Command, error) {
	agg := cmd.(*SQLAggregation)
	a.constructions.Aggregations = agg.Aggregations
	a.constructions.GroupByColumns = agg.GroupByColumns
	a.constructions.IsAggregationQuery = agg.IsAggregationQuery

	p, err := a.prompts.Render("construct", map[string]string{
		"question":            a.question,
		"grounding_results":   mustJSON(a.constructions.ColumnMappings),
		"filter_results":      mustJSON(a.constructions.Conditions),
		"join_results":        mustJSON(a.constructions.Joins),
		"aggregation_results": mustJSON(agg),
	})
	if err != nil {
		return nil, err
	}

	// Hand the construction stage a copy of the accumulator so the adapter
	// sees every partial result gathered so far.
	next := *a.constructions
	next.Question = p
	return &next, nil
}

func (a *SQLAgent) prepareValidation(cmd Command) (Command, error) {
	construction := cmd.(*SQLConstruction)
	a.sql = construction.Query
	a.constructions.Query = construction.Query

	p, err := a.prompts.Render("validate", map[string]string{
		"question": a.question,
		"query":    a.sql,
	})
	if err != nil {
		return nil, err
	}
	return &SQLValidation{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *SQLAgent) prepareQuery(cmd Command) (Command, error) {
	validation := cmd.(*SQLValidation)
	a.answered = true
	a.response = &Query{
		Base:     Base{Question: a.question, QID: a.qID},
		Response: a.sql,
		Approved: validation.Approved,
		Summary:  validation.Summary,
	}
	return nil, nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
