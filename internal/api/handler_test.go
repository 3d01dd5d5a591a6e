package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/notify"
	"github.com/nidhogg/parley/internal/prompt"
	"github.com/nidhogg/parley/internal/service"
	"go.uber.org/zap"
)

const qaTemplates = `
finalize: "FINAL {{question}} {{response}}"
enhance: "ENH {{question}} {{information}}"
guardrails:
  pre_check: "PRE {{question}}"
  post_check: "POST {{question}} {{response}} {{memory}}"
`

const sqlTemplates = `
check: "CHECK {{question}}"
ground: "GROUND {{question}}"
filter: "FILTER {{question}}"
join: "JOIN {{question}}"
aggregate: "AGG {{question}}"
construct: "CONSTRUCT {{question}}"
validate: "VALIDATE {{question}} {{query}}"
`

type stubAdapter struct{}

func (stubAdapter) Answer(_ context.Context, cmd domain.Command) (domain.Command, error) {
	switch c := cmd.(type) {
	case *domain.Check:
		c.Approved = true
	case *domain.UseTools:
		c.Response = "tool output"
	case *domain.LLMResponse:
		c.Response = "Paris"
	case *domain.FinalCheck:
		c.Approved = true
		c.Summary = "fine"
	case *domain.SQLCheck:
		c.Approved = true
	case *domain.SQLConstruction:
		c.Query = "SELECT 1"
	case *domain.SQLValidation:
		c.Approved = true
	}
	return cmd, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	qa, err := prompt.Parse([]byte(qaTemplates), prompt.QANames)
	if err != nil {
		t.Fatalf("parse qa templates: %v", err)
	}
	sql, err := prompt.Parse([]byte(sqlTemplates), prompt.SQLNames)
	if err != nil {
		t.Fatalf("parse sql templates: %v", err)
	}

	responses := notify.NewMemory()
	svc := service.New(stubAdapter{}, stubAdapter{}, qa, sql, responses, nil, zap.NewNop())
	bus := service.Bootstrap(svc)
	handler := NewHandler(bus, responses, nil, zap.NewNop())

	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAnswerEndpointReturnsMessages(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/answer", map[string]string{
		"question": "What is the capital of France?",
		"q_id":     "api1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.QID != "api1" {
		t.Fatalf("q_id = %q", result.QID)
	}
	if len(result.Messages) != 2 {
		t.Fatalf("messages = %v", result.Messages)
	}
	if !strings.Contains(result.Messages[0], "Response:\nParis") {
		t.Fatalf("first message = %q", result.Messages[0])
	}
}

func TestAnswerEndpointGeneratesQID(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/answer", map[string]string{"question": "q"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.QID == "" {
		t.Fatal("q_id should be generated")
	}
}

func TestAnswerEndpointRejectsEmptyQuestion(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/answer", map[string]string{"question": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSQLEndpointReturnsQuery(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/sql", map[string]any{
		"question": "count orders",
		"q_id":     "sql1",
		"schema": map[string]any{
			"tables": map[string][]string{"orders": {"id"}},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Messages) != 1 || !strings.Contains(result.Messages[0], "SELECT 1") {
		t.Fatalf("messages = %v", result.Messages)
	}
}

func TestGetAnswerWithoutStore(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/answers/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
