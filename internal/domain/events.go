package domain

import (
	"fmt"
	"strings"
)

// EventKind identifies a terminal or side-effect-worthy occurrence.
type EventKind string

const (
	EventResponse        EventKind = "response"
	EventEvaluation      EventKind = "evaluation"
	EventFailedRequest   EventKind = "failed_request"
	EventRejectedRequest EventKind = "rejected_request"
	EventRejectedAnswer  EventKind = "rejected_answer"
	EventQuery           EventKind = "query"
)

// Event is a notification-worthy occurrence consumed by side-effect handlers.
// The three renderings are pure derived views: a machine-parseable stream
// line, a plain-text message for notification sinks, and a markdown block
// for rich clients.
type Event interface {
	Message
	EventKind() EventKind
	EventString() string
	Text() string
	Markdown() string
}

// Response is the successful final answer.
type Response struct {
	Base
	Response string `json:"response"`
}

func (*Response) EventKind() EventKind { return EventResponse }

func (e *Response) EventString() string { return "data: " + e.Markdown() + "\n\n" }

func (e *Response) Text() string {
	return fmt.Sprintf("\nQuestion:\n%s\nResponse:\n%s", e.Question, e.Response)
}

func (e *Response) Markdown() string {
	return "## Response\n\n" + e.Response
}

// Evaluation is the post-check quality summary, emitted alongside a Response
// whenever guardrail evaluation completes.
type Evaluation struct {
	Base
	Response           string   `json:"response"`
	Approved           bool     `json:"approved"`
	Summary            string   `json:"summary"`
	Issues             []string `json:"issues,omitempty"`
	Plausibility       string   `json:"plausibility,omitempty"`
	FactualConsistency string   `json:"factual_consistency,omitempty"`
	Clarity            string   `json:"clarity,omitempty"`
	Completeness       string   `json:"completeness,omitempty"`
}

func (*Evaluation) EventKind() EventKind { return EventEvaluation }

func (e *Evaluation) EventString() string { return "data: " + e.Markdown() }

func (e *Evaluation) Text() string {
	return fmt.Sprintf(
		"\nQuestion:\n%s\nResponse:\n%s\nSummary:\n%s\nIssues:\n%s\nPlausibility:\n%s\nFactual Consistency:\n%s\nClarity:\n%s\nCompleteness:\n%s",
		e.Question, e.Response, e.Summary, strings.Join(e.Issues, ", "),
		e.Plausibility, e.FactualConsistency, e.Clarity, e.Completeness)
}

func (e *Evaluation) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Evaluation\n\n%s\n\n", e.Summary)
	if len(e.Issues) > 0 {
		b.WriteString("**Issues:**\n")
		for _, issue := range e.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
	if e.Plausibility != "" {
		fmt.Fprintf(&b, "**Plausibility:** %s\n\n", e.Plausibility)
	}
	if e.FactualConsistency != "" {
		fmt.Fprintf(&b, "**Factual Consistency:** %s\n\n", e.FactualConsistency)
	}
	if e.Clarity != "" {
		fmt.Fprintf(&b, "**Clarity:** %s\n\n", e.Clarity)
	}
	if e.Completeness != "" {
		fmt.Fprintf(&b, "**Completeness:** %s\n\n", e.Completeness)
	}
	return strings.TrimSpace(b.String())
}

// FailedRequest reports an internal pipeline fault, e.g. a detected
// duplicate-command loop.
type FailedRequest struct {
	Base
	Exception string `json:"exception"`
}

func (*FailedRequest) EventKind() EventKind { return EventFailedRequest }

func (e *FailedRequest) EventString() string { return "data: " + e.Markdown() }

func (e *FailedRequest) Text() string {
	return fmt.Sprintf("\nQuestion:\n%s\nException:\n%s", e.Question, e.Exception)
}

func (e *FailedRequest) Markdown() string {
	return fmt.Sprintf("## Failed Request\n\n```\n%s\n```", e.Exception)
}

// RejectedRequest reports a guardrail pre-check rejection of the question.
type RejectedRequest struct {
	Base
	Response string `json:"response"`
}

func (*RejectedRequest) EventKind() EventKind { return EventRejectedRequest }

func (e *RejectedRequest) EventString() string { return "data: " + e.Markdown() }

func (e *RejectedRequest) Text() string {
	return fmt.Sprintf("\nQuestion:\n%s\n was rejected. Response:\n%s", e.Question, e.Response)
}

func (e *RejectedRequest) Markdown() string {
	return "## Rejected Request\n\n" + e.Response
}

// RejectedAnswer reports a guardrail post-check rejection of the answer.
type RejectedAnswer struct {
	Base
	Response  string `json:"response"`
	Rejection string `json:"rejection"`
}

func (*RejectedAnswer) EventKind() EventKind { return EventRejectedAnswer }

func (e *RejectedAnswer) EventString() string { return "data: " + e.Markdown() }

func (e *RejectedAnswer) Text() string {
	return fmt.Sprintf("Question:\n%s\nResponse:\n%s\nRejection Reason:\n%s",
		e.Question, e.Response, e.Rejection)
}

func (e *RejectedAnswer) Markdown() string {
	return fmt.Sprintf("## Rejected Answer\n\n%s\n\n### Rejection Reason\n\n%s",
		e.Response, e.Rejection)
}

// Query is the terminal event of the SQL pipeline: the validated SQL string
// plus the validation verdict.
type Query struct {
	Base
	Response string `json:"response"`
	Approved bool   `json:"approved"`
	Summary  string `json:"summary,omitempty"`
}

func (*Query) EventKind() EventKind { return EventQuery }

func (e *Query) EventString() string { return "data: " + e.Markdown() }

func (e *Query) Text() string {
	return fmt.Sprintf("\nQuestion:\n%s\nQuery:\n%s\nSummary:\n%s",
		e.Question, e.Response, e.Summary)
}

func (e *Query) Markdown() string {
	return fmt.Sprintf("## Query\n\n```sql\n%s\n```\n\n%s", e.Response, e.Summary)
}
