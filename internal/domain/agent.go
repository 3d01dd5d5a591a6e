package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nidhogg/parley/internal/prompt"
)

// ErrEmptyQuestion is returned when an agent is constructed without a question.
var ErrEmptyQuestion = fmt.Errorf("question is required")

// transition consumes an adapter-populated command and decides the next one.
// A nil next command with no error means the chain decided to stop here.
type transition func(Command) (Command, error)

// machine drives an ordered chain of pipeline stages. It owns the per-request
// sequencing state shared by both agent variants: the duplicate-command
// detector, the terminal flag, the terminal response and the outgoing event
// queue. Transitions are registered per command kind.
type machine struct {
	question string
	qID      string

	answered bool
	prevKind Kind
	hasPrev  bool
	response Event
	events   []Event

	transitions map[Kind]transition
}

// Update runs the duplicate-command check and then the transition registered
// for the incoming command's kind. It returns the next command to dispatch,
// or nil when the pipeline concluded.
func (m *machine) Update(cmd Command) (Command, error) {
	m.updateState(cmd)

	if m.answered {
		return nil, nil
	}

	tr, ok := m.transitions[cmd.Kind()]
	if !ok {
		return nil, fmt.Errorf("unsupported command kind %q", cmd.Kind())
	}
	return tr(cmd)
}

// updateState records the incoming command kind. Two consecutive commands of
// the same kind mean the adapter failed to make progress; the request is
// terminated with a FailedRequest rather than looping forever. This is a
// coarse-grained safety net, not a semantic livelock detector.
func (m *machine) updateState(cmd Command) {
	if m.hasPrev && m.prevKind == cmd.Kind() {
		m.answered = true
		m.response = &FailedRequest{
			Base:      Base{Question: m.question, QID: m.qID},
			Exception: "Internal error: Duplicate command",
		}
		return
	}
	m.prevKind = cmd.Kind()
	m.hasPrev = true
}

// Answered reports whether the pipeline reached a terminal state.
func (m *machine) Answered() bool { return m.answered }

// Response returns the terminal event, or nil while the pipeline is running.
func (m *machine) Response() Event { return m.response }

// QID returns the request correlation id.
func (m *machine) QID() string { return m.qID }

// QuestionText returns the original user question.
func (m *machine) QuestionText() string { return m.question }

// Emit appends an event to the outgoing queue.
func (m *machine) Emit(ev Event) { m.events = append(m.events, ev) }

// CollectEvents drains and returns the outgoing event queue in emission order.
func (m *machine) CollectEvents() []Event {
	out := m.events
	m.events = nil
	return out
}

// Agent is the per-request state machine for the QA pipeline:
// Question → Check → Retrieve → Rerank → Enhance → UseTools → LLMResponse →
// FinalCheck → terminal. It is exclusively owned by the request that created
// it and mutated only through Update.
type Agent struct {
	machine

	prompts     *prompt.Library
	enhancement string
	toolAnswer  *UseTools
	evaluation  *Evaluation
}

// NewAgent builds an agent bound to the incoming question. A missing required
// prompt template is a configuration error surfaced here, at construction.
func NewAgent(q *Question, prompts *prompt.Library) (*Agent, error) {
	if q == nil || q.Question == "" {
		return nil, ErrEmptyQuestion
	}
	for _, name := range prompt.QANames {
		if !prompts.Has(name) {
			return nil, fmt.Errorf("prompt template %q not found", name)
		}
	}

	a := &Agent{
		machine: machine{question: q.Question, qID: q.QID},
		prompts: prompts,
	}
	a.transitions = map[Kind]transition{
		KindQuestion:    a.prepareCheck,
		KindCheck:       a.prepareRetrieve,
		KindRetrieve:    a.prepareRerank,
		KindRerank:      a.prepareEnhance,
		KindEnhance:     a.prepareUseTools,
		KindUseTools:    a.prepareFinalize,
		KindLLMResponse: a.prepareFinalCheck,
		KindFinalCheck:  a.prepareEvaluation,
	}
	return a, nil
}

// Evaluation returns the post-check evaluation event, if one was produced.
func (a *Agent) Evaluation() *Evaluation { return a.evaluation }

func (a *Agent) prepareCheck(Command) (Command, error) {
	p, err := a.prompts.Render("guardrails.pre_check", map[string]string{
		"question": a.question,
	})
	if err != nil {
		return nil, err
	}
	return &Check{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *Agent) prepareRetrieve(cmd Command) (Command, error) {
	check := cmd.(*Check)
	if !check.Approved {
		a.answered = true
		a.response = &RejectedRequest{
			Base:     Base{Question: a.question, QID: a.qID},
			Response: check.Response,
		}
		return nil, nil
	}
	return &Retrieve{Base: Base{Question: a.question, QID: a.qID}}, nil
}

func (a *Agent) prepareRerank(cmd Command) (Command, error) {
	retrieve := cmd.(*Retrieve)
	return &Rerank{
		Base:       Base{Question: retrieve.Question, QID: a.qID},
		Candidates: retrieve.Candidates,
	}, nil
}

func (a *Agent) prepareEnhance(cmd Command) (Command, error) {
	rerank := cmd.(*Rerank)
	information, err := json.Marshal(rerank.Candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	p, err := a.prompts.Render("enhance", map[string]string{
		"question":    a.question,
		"information": string(information),
	})
	if err != nil {
		return nil, err
	}
	return &Enhance{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *Agent) prepareUseTools(cmd Command) (Command, error) {
	enhance := cmd.(*Enhance)
	a.enhancement = enhance.Response
	if a.enhancement == "" {
		a.enhancement = a.question
	}
	return &UseTools{Base: Base{Question: a.enhancement, QID: a.qID}}, nil
}

func (a *Agent) prepareFinalize(cmd Command) (Command, error) {
	tools := cmd.(*UseTools)
	a.toolAnswer = tools

	p, err := a.prompts.Render("finalize", map[string]string{
		"question": a.question,
		"response": tools.Response,
	})
	if err != nil {
		return nil, err
	}
	return &LLMResponse{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *Agent) prepareFinalCheck(cmd Command) (Command, error) {
	if a.toolAnswer == nil {
		return nil, fmt.Errorf("tool answer is required to finalize")
	}
	final := cmd.(*LLMResponse)

	a.response = &Response{
		Base:     Base{Question: a.question, QID: a.qID},
		Response: final.Response,
	}

	p, err := a.prompts.Render("guardrails.post_check", map[string]string{
		"question": a.question,
		"response": final.Response,
		"memory":   strings.Join(a.toolAnswer.Memory, "\n"),
	})
	if err != nil {
		return nil, err
	}
	return &FinalCheck{Base: Base{Question: p, QID: a.qID}}, nil
}

func (a *Agent) prepareEvaluation(cmd Command) (Command, error) {
	check := cmd.(*FinalCheck)
	a.answered = true

	var answer string
	if resp, ok := a.response.(*Response); ok {
		answer = resp.Response
	}
	a.evaluation = &Evaluation{
		Base:               Base{Question: a.question, QID: a.qID},
		Response:           answer,
		Approved:           check.Approved,
		Summary:            check.Summary,
		Issues:             check.Issues,
		Plausibility:       check.Plausibility,
		FactualConsistency: check.FactualConsistency,
		Clarity:            check.Clarity,
		Completeness:       check.Completeness,
	}
	if !check.Approved {
		a.response = &RejectedAnswer{
			Base:      Base{Question: a.question, QID: a.qID},
			Response:  answer,
			Rejection: check.Summary,
		}
	}
	return nil, nil
}
