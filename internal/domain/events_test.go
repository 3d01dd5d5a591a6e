package domain

import (
	"strings"
	"testing"
)

func TestEventRenderings(t *testing.T) {
	response := &Response{Base: Base{Question: "q?", QID: "1"}, Response: "a"}
	if got := response.Text(); got != "\nQuestion:\nq?\nResponse:\na" {
		t.Fatalf("response text = %q", got)
	}
	if !strings.HasPrefix(response.EventString(), "data: ") {
		t.Fatalf("event string = %q", response.EventString())
	}
	if !strings.Contains(response.Markdown(), "## Response") {
		t.Fatalf("markdown = %q", response.Markdown())
	}

	failed := &FailedRequest{Base: Base{Question: "q?", QID: "1"}, Exception: "boom"}
	if got := failed.Text(); got != "\nQuestion:\nq?\nException:\nboom" {
		t.Fatalf("failure text = %q", got)
	}

	rejected := &RejectedRequest{Base: Base{Question: "q?", QID: "1"}, Response: "no"}
	if got := rejected.Text(); got != "\nQuestion:\nq?\n was rejected. Response:\nno" {
		t.Fatalf("rejection text = %q", got)
	}

	evaluation := &Evaluation{
		Base:     Base{Question: "q?", QID: "1"},
		Response: "a",
		Approved: true,
		Summary:  "fine",
		Issues:   []string{"minor", "wording"},
	}
	text := evaluation.Text()
	if !strings.Contains(text, "Summary:\nfine") || !strings.Contains(text, "minor, wording") {
		t.Fatalf("evaluation text = %q", text)
	}

	query := &Query{Base: Base{Question: "q?", QID: "1"}, Response: "SELECT 1", Approved: true, Summary: "ok"}
	if !strings.Contains(query.Markdown(), "```sql\nSELECT 1\n```") {
		t.Fatalf("query markdown = %q", query.Markdown())
	}
}

func TestCorrelationID(t *testing.T) {
	events := []Event{
		&Response{Base: Base{QID: "x"}},
		&Evaluation{Base: Base{QID: "x"}},
		&FailedRequest{Base: Base{QID: "x"}},
		&RejectedRequest{Base: Base{QID: "x"}},
		&RejectedAnswer{Base: Base{QID: "x"}},
		&Query{Base: Base{QID: "x"}},
	}
	for _, ev := range events {
		if ev.CorrelationID() != "x" {
			t.Fatalf("%T correlation id = %q", ev, ev.CorrelationID())
		}
	}
}
