// Package prompt loads named LLM prompt templates from YAML files and renders
// them with {{placeholder}} substitution.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// QANames are the templates the QA agent requires.
var QANames = []string{"finalize", "enhance", "guardrails.pre_check", "guardrails.post_check"}

// SQLNames are the templates the SQL agent requires.
var SQLNames = []string{"check", "ground", "filter", "join", "aggregate", "construct", "validate"}

// Library is an immutable mapping from dotted template names to template
// strings, loaded once at startup. A missing required template is a
// configuration error, not a runtime-recoverable condition.
type Library struct {
	templates map[string]string
}

// Load reads a YAML template file and flattens nested mappings into dotted
// names (guardrails.pre_check). Every name in required must be present.
func Load(path string, required []string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts %s: %w", path, err)
	}
	return Parse(data, required)
}

// Parse builds a Library from raw YAML content.
func Parse(data []byte, required []string) (*Library, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	lib := &Library{templates: make(map[string]string)}
	flatten("", raw, lib.templates)

	for _, name := range required {
		if _, ok := lib.templates[name]; !ok {
			return nil, fmt.Errorf("prompt template %q not found", name)
		}
	}
	return lib, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, val := range node {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := val.(type) {
		case string:
			out[name] = v
		case map[string]any:
			flatten(name, v, out)
		}
	}
}

// Render looks up a template by dotted name and substitutes {{key}}
// placeholders with the given variables.
func (l *Library) Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	for key, val := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{{"+key+"}}", val)
	}
	return tmpl, nil
}

// Has reports whether a template with the given name exists.
func (l *Library) Has(name string) bool {
	_, ok := l.templates[name]
	return ok
}
