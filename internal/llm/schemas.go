package llm

// Response schemas for the structured caller. Field names double as the
// contract communicated to the model in JSON mode.

// PreCheck is the guardrail pre-check verdict on an incoming question.
type PreCheck struct {
	ChainOfThought string `json:"chain_of_thought"`
	Approved       bool   `json:"approved"`
	Response       string `json:"response"`
}

// PostCheck is the guardrail post-check evaluation of a final answer.
type PostCheck struct {
	ChainOfThought     string   `json:"chain_of_thought"`
	Approved           bool     `json:"approved"`
	Summary            string   `json:"summary"`
	Issues             []string `json:"issues"`
	Plausibility       string   `json:"plausibility"`
	FactualConsistency string   `json:"factual_consistency"`
	Clarity            string   `json:"clarity"`
	Completeness       string   `json:"completeness"`
}

// Result is the generic answer schema used by the enhance and finalize stages.
type Result struct {
	ChainOfThought string `json:"chain_of_thought"`
	Response       string `json:"response"`
}

// SQL stage schemas.

// Grounding maps question phrases onto schema elements.
type Grounding struct {
	ChainOfThought string            `json:"chain_of_thought"`
	ColumnMappings map[string]string `json:"column_mappings"`
	TableMappings  map[string]string `json:"table_mappings"`
}

// Filter extracts WHERE conditions.
type Filter struct {
	ChainOfThought string   `json:"chain_of_thought"`
	Conditions     []string `json:"conditions"`
}

// Join derives join paths between grounded tables.
type Join struct {
	ChainOfThought string   `json:"chain_of_thought"`
	Joins          []string `json:"joins"`
}

// Aggregation derives aggregate functions and GROUP BY columns.
type Aggregation struct {
	ChainOfThought     string   `json:"chain_of_thought"`
	Aggregations       []string `json:"aggregations"`
	GroupByColumns     []string `json:"group_by_columns"`
	IsAggregationQuery bool     `json:"is_aggregation_query"`
}

// Construction synthesizes the final SQL string from the accumulator.
type Construction struct {
	ChainOfThought string `json:"chain_of_thought"`
	Query          string `json:"query"`
}

// Validation is the guardrail verdict on the constructed query.
type Validation struct {
	ChainOfThought string `json:"chain_of_thought"`
	Approved       bool   `json:"approved"`
	Summary        string `json:"summary"`
}
