package domain

// SchemaInfo describes the database schema the SQL pipeline grounds against.
type SchemaInfo struct {
	Tables map[string][]string `json:"tables"`          // table -> columns
	Keys   map[string]string   `json:"keys,omitempty"`  // "table.column" -> "table.column" foreign keys
}

// SQLQuestion is the SQL pipeline entry point.
type SQLQuestion struct {
	Base
	Schema *SchemaInfo `json:"schema,omitempty"`
}

func (*SQLQuestion) Kind() Kind { return KindSQLQuestion }

// SQLCheck carries the guardrail verdict for a SQL question.
type SQLCheck struct {
	Base
	Approved       bool   `json:"approved"`
	ChainOfThought string `json:"chain_of_thought,omitempty"`
	Response       string `json:"response,omitempty"`
}

func (*SQLCheck) Kind() Kind { return KindSQLCheck }

// SQLGrounding maps question terms onto schema columns and tables.
type SQLGrounding struct {
	Base
	ColumnMappings map[string]string `json:"column_mappings,omitempty"` // phrase -> table.column
	TableMappings  map[string]string `json:"table_mappings,omitempty"`  // phrase -> table
}

func (*SQLGrounding) Kind() Kind { return KindSQLGrounding }

// SQLFilter extracts WHERE conditions from the question.
type SQLFilter struct {
	Base
	Conditions []string `json:"conditions,omitempty"`
}

func (*SQLFilter) Kind() Kind { return KindSQLFilter }

// SQLJoinInference derives the join paths between grounded tables.
type SQLJoinInference struct {
	Base
	Joins []string `json:"joins,omitempty"`
}

func (*SQLJoinInference) Kind() Kind { return KindSQLJoinInference }

// SQLAggregation derives GROUP BY columns and aggregate functions.
type SQLAggregation struct {
	Base
	Aggregations       []string `json:"aggregations,omitempty"`
	GroupByColumns     []string `json:"group_by_columns,omitempty"`
	IsAggregationQuery bool     `json:"is_aggregation_query"`
}

func (*SQLAggregation) Kind() Kind { return KindSQLAggregation }

// SQLConstruction is the accumulator the earlier stages write into and the
// construction stage reads to synthesize one SQL string.
type SQLConstruction struct {
	Base
	Schema             *SchemaInfo       `json:"schema,omitempty"`
	ColumnMappings     map[string]string `json:"column_mappings,omitempty"`
	TableMappings      map[string]string `json:"table_mappings,omitempty"`
	Conditions         []string          `json:"conditions,omitempty"`
	Joins              []string          `json:"joins,omitempty"`
	Aggregations       []string          `json:"aggregations,omitempty"`
	GroupByColumns     []string          `json:"group_by_columns,omitempty"`
	IsAggregationQuery bool              `json:"is_aggregation_query"`
	Query              string            `json:"query,omitempty"`
}

func (*SQLConstruction) Kind() Kind { return KindSQLConstruction }

// SQLValidation carries the guardrail verdict on the constructed query.
type SQLValidation struct {
	Base
	Approved bool   `json:"approved"`
	Summary  string `json:"summary,omitempty"`
}

func (*SQLValidation) Kind() Kind { return KindSQLValidation }
