package domain

// Kind identifies a pipeline stage. A command's identity for duplicate
// detection is its Kind, never its field values.
type Kind string

const (
	KindQuestion    Kind = "question"
	KindCheck       Kind = "check"
	KindRetrieve    Kind = "retrieve"
	KindRerank      Kind = "rerank"
	KindEnhance     Kind = "enhance"
	KindUseTools    Kind = "use_tools"
	KindLLMResponse Kind = "llm_response"
	KindFinalCheck  Kind = "final_check"

	KindSQLQuestion      Kind = "sql_question"
	KindSQLCheck         Kind = "sql_check"
	KindSQLGrounding     Kind = "sql_grounding"
	KindSQLFilter        Kind = "sql_filter"
	KindSQLJoinInference Kind = "sql_join_inference"
	KindSQLAggregation   Kind = "sql_aggregation"
	KindSQLConstruction  Kind = "sql_construction"
	KindSQLValidation    Kind = "sql_validation"
)

// Message is anything the bus can route: a Command or an Event.
type Message interface {
	CorrelationID() string
}

// Command is a request to perform one pipeline stage. The adapter executes it
// and returns it populated with results; the agent then decides the next stage.
type Command interface {
	Message
	Kind() Kind
}

// Base carries the fields every command and event shares.
type Base struct {
	Question string `json:"question"`
	QID      string `json:"q_id"`
}

// CorrelationID returns the request correlation id used for tracing and
// notification routing.
func (b Base) CorrelationID() string { return b.QID }

// KBResponse is a knowledge-base candidate produced by Retrieve and
// filtered by Rerank.
type KBResponse struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	ID          string  `json:"id"`
	Tag         string  `json:"tag"`
	Name        string  `json:"name"`
}

// Question is the pipeline entry point.
type Question struct {
	Base
}

func (*Question) Kind() Kind { return KindQuestion }

// Check carries the guardrail pre-check input and, after execution,
// the approval verdict.
type Check struct {
	Base
	Approved       bool   `json:"approved"`
	ChainOfThought string `json:"chain_of_thought,omitempty"`
	Response       string `json:"response,omitempty"`
}

func (*Check) Kind() Kind { return KindCheck }

// Retrieve holds knowledge-base candidates fetched by embedding search.
type Retrieve struct {
	Base
	Candidates []KBResponse `json:"candidates,omitempty"`
}

func (*Retrieve) Kind() Kind { return KindRetrieve }

// Rerank holds the score-sorted candidate subset after cross-encoder ranking.
type Rerank struct {
	Base
	Candidates []KBResponse `json:"candidates,omitempty"`
}

func (*Rerank) Kind() Kind { return KindRerank }

// Enhance carries the question-enhancement LLM output. An empty Response
// means the LLM produced no enhancement and the original question is used.
type Enhance struct {
	Base
	Response       string `json:"response,omitempty"`
	ChainOfThought string `json:"chain_of_thought,omitempty"`
}

func (*Enhance) Kind() Kind { return KindEnhance }

// UseTools carries the tool-sandbox result plus its execution trace.
type UseTools struct {
	Base
	Response string   `json:"response,omitempty"`
	Memory   []string `json:"memory,omitempty"`
}

func (*UseTools) Kind() Kind { return KindUseTools }

// LLMResponse carries the final-answer LLM output.
type LLMResponse struct {
	Base
	Response       string `json:"response,omitempty"`
	ChainOfThought string `json:"chain_of_thought,omitempty"`
}

func (*LLMResponse) Kind() Kind { return KindLLMResponse }

// FinalCheck carries the guardrail post-check evaluation of the answer.
type FinalCheck struct {
	Base
	Approved           bool     `json:"approved"`
	Summary            string   `json:"summary,omitempty"`
	Issues             []string `json:"issues,omitempty"`
	Plausibility       string   `json:"plausibility,omitempty"`
	FactualConsistency string   `json:"factual_consistency,omitempty"`
	Clarity            string   `json:"clarity,omitempty"`
	Completeness       string   `json:"completeness,omitempty"`
}

func (*FinalCheck) Kind() Kind { return KindFinalCheck }
