package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/nidhogg/parley/internal/llm"
	"go.uber.org/zap"
)

// scriptedChatter replays a fixed sequence of responses.
type scriptedChatter struct {
	responses []*llm.ChatResponse
	requests  []*llm.ChatRequest
}

func (s *scriptedChatter) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func echoTool() (llm.Tool, Handler) {
	def := llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "echo",
			Description: "echo the arguments",
			Parameters:  map[string]interface{}{"type": "object"},
		},
	}
	handler := func(_ context.Context, args string) (string, error) {
		return `{"echoed":` + args + `}`, nil
	}
	return def, handler
}

func TestRunnerExecutesToolRounds(t *testing.T) {
	registry := NewRegistry()
	registry.Register(echoTool())

	chatter := &scriptedChatter{responses: []*llm.ChatResponse{
		{
			FinishReason: "tool_calls",
			ToolCalls: []llm.ToolCall{{
				ID:   "call-1",
				Type: "function",
				Function: llm.ToolCallFunction{
					Name:      "echo",
					Arguments: `{"x":1}`,
				},
			}},
		},
		{Content: "final answer", FinishReason: "stop"},
	}}

	runner := NewLLMRunner(chatter, registry, zap.NewNop())
	result, memory, err := runner.Use(context.Background(), "question")
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if result != "final answer" {
		t.Fatalf("result = %q", result)
	}
	if len(memory) != 1 || memory[0] != `echo({"x":1}) = {"echoed":{"x":1}}` {
		t.Fatalf("memory = %v", memory)
	}

	// Second request must carry the assistant tool-call turn and the tool reply.
	second := chatter.requests[1]
	if len(second.Messages) != 4 {
		t.Fatalf("messages = %d, want system,user,assistant,tool", len(second.Messages))
	}
	if second.Messages[3].Role != "tool" || second.Messages[3].ToolCallID != "call-1" {
		t.Fatalf("tool message = %+v", second.Messages[3])
	}
}

func TestRunnerNoToolsNeeded(t *testing.T) {
	chatter := &scriptedChatter{responses: []*llm.ChatResponse{
		{Content: "direct", FinishReason: "stop"},
	}}

	runner := NewLLMRunner(chatter, NewRegistry(), zap.NewNop())
	result, memory, err := runner.Use(context.Background(), "question")
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if result != "direct" || len(memory) != 0 {
		t.Fatalf("result = %q memory = %v", result, memory)
	}
	if len(chatter.requests[0].Tools) != 0 {
		t.Fatal("empty registry should not advertise tools")
	}
}

func TestRunnerRecordsToolErrors(t *testing.T) {
	registry := NewRegistry()
	def, _ := echoTool()
	registry.Register(def, func(context.Context, string) (string, error) {
		return "", fmt.Errorf("graph unavailable")
	})

	chatter := &scriptedChatter{responses: []*llm.ChatResponse{
		{
			FinishReason: "tool_calls",
			ToolCalls: []llm.ToolCall{{
				ID:       "call-1",
				Type:     "function",
				Function: llm.ToolCallFunction{Name: "echo", Arguments: `{}`},
			}},
		},
		{Content: "answered anyway", FinishReason: "stop"},
	}}

	runner := NewLLMRunner(chatter, registry, zap.NewNop())
	result, memory, err := runner.Use(context.Background(), "q")
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if result != "answered anyway" {
		t.Fatalf("result = %q", result)
	}
	if len(memory) != 1 || memory[0] != `echo({}) = {"error":"graph unavailable"}` {
		t.Fatalf("memory = %v", memory)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.Execute(context.Background(), "nope", "{}"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
