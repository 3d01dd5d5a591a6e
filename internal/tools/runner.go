package tools

import (
	"context"
	"fmt"

	"github.com/nidhogg/parley/internal/llm"
	"go.uber.org/zap"
)

// Runner resolves a question by letting the model call tools, returning
// the final answer together with a transcript of every tool result.
type Runner interface {
	Use(ctx context.Context, question string) (result string, memory []string, err error)
}

// Chatter is the chat capability the runner drives.
type Chatter interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

const maxToolRounds = 5

const runnerSystemPrompt = "You are an assistant for an industrial asset knowledge base. " +
	"Use the available tools to look up asset ids, names, metadata and topology " +
	"before answering. Answer concisely based on tool results."

// LLMRunner runs the tool-calling loop against an LLM.
type LLMRunner struct {
	chatter  Chatter
	registry *Registry
	logger   *zap.Logger
}

// NewLLMRunner creates a runner over the given registry.
func NewLLMRunner(chatter Chatter, registry *Registry, logger *zap.Logger) *LLMRunner {
	return &LLMRunner{chatter: chatter, registry: registry, logger: logger}
}

// Use runs the loop for one question. Every tool result is recorded in the
// returned memory slice so the guardrail check can audit the answer.
func (r *LLMRunner) Use(ctx context.Context, question string) (string, []string, error) {
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: runnerSystemPrompt},
			{Role: "user", Content: question},
		},
	}
	if len(r.registry.Definitions()) > 0 {
		req.Tools = r.registry.Definitions()
		req.ToolChoice = "auto"
	}

	var memory []string
	var resp *llm.ChatResponse
	for round := 0; round < maxToolRounds; round++ {
		var err error
		resp, err = r.chatter.Chat(ctx, req)
		if err != nil {
			return "", nil, err
		}

		if len(resp.ToolCalls) == 0 || resp.FinishReason != "tool_calls" {
			break
		}

		req.Messages = append(req.Messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result, toolErr := r.registry.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
			if toolErr != nil {
				result = fmt.Sprintf(`{"error":%q}`, toolErr.Error())
			}
			memory = append(memory, fmt.Sprintf("%s(%s) = %s", tc.Function.Name, tc.Function.Arguments, result))
			req.Messages = append(req.Messages, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: tc.ID,
			})
		}

		r.logger.Debug("tool round complete",
			zap.Int("round", round+1),
			zap.Int("tool_calls", len(resp.ToolCalls)))
	}

	if resp == nil {
		return "", nil, fmt.Errorf("no response from model")
	}
	return resp.Content, memory, nil
}
