// Package tools implements the tool-use stage of the QA pipeline: a
// registry of callable tools and an LLM-driven execution loop that lets
// the model consult them before answering.
package tools

import (
	"context"
	"fmt"

	"github.com/nidhogg/parley/internal/llm"
)

// Handler executes a tool call and returns the result as a string.
type Handler func(ctx context.Context, args string) (string, error)

// Registry holds available tools and their handlers.
type Registry struct {
	defs     []llm.Tool
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a tool definition and its handler.
func (r *Registry) Register(def llm.Tool, handler Handler) {
	r.defs = append(r.defs, def)
	r.handlers[def.Function.Name] = handler
}

// Definitions returns all tool definitions for the LLM request.
func (r *Registry) Definitions() []llm.Tool {
	return r.defs
}

// Execute runs a tool by name with the given JSON arguments.
func (r *Registry) Execute(ctx context.Context, name, args string) (string, error) {
	h, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return h(ctx, args)
}
