package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Caller is the structured-output capability the pipeline adapter depends on:
// send a prompt, get the model's answer decoded into a typed schema.
type Caller interface {
	Use(ctx context.Context, prompt string, out any) error
}

const systemPrompt = "You are a helpful assistant. Respond with a single JSON object matching the requested fields, and nothing else."

// Structured wraps a chat client and decodes JSON-mode responses into schema
// structs. The zero schema value names the expected fields for the model.
type Structured struct {
	client *Client
}

// NewStructured creates a structured caller on top of a chat client.
func NewStructured(client *Client) *Structured {
	return &Structured{client: client}
}

// Use sends the prompt in JSON mode and unmarshals the reply into out,
// which must be a pointer to the expected schema struct.
func (s *Structured) Use(ctx context.Context, prompt string, out any) error {
	fields, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	resp, err := s.client.Chat(ctx, &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt + " Expected shape: " + string(fields)},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}

	content := strings.TrimSpace(resp.Content)
	// Some models wrap JSON mode output in a code fence anyway.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	return nil
}
