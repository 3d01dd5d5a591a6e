package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nidhogg/parley/internal/assets"
	"github.com/nidhogg/parley/internal/llm"
)

// RegisterAssetTools adds the asset graph lookups to a registry.
func RegisterAssetTools(reg *Registry, graph *assets.Graph) {
	reg.Register(llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "convert_name_to_id",
			Description: "Convert an asset name to its id",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]string{"type": "string", "description": "Asset name"},
				},
				"required": []string{"name"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(args), &p); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
		id, err := graph.NameToID(ctx, p.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"id":%q}`, id), nil
	})

	reg.Register(llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "convert_id_to_name",
			Description: "Convert an asset id to its name",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]string{"type": "string", "description": "Asset id"},
				},
				"required": []string{"id"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(args), &p); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
		name, err := graph.IDToName(ctx, p.ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"name":%q}`, name), nil
	})

	reg.Register(llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_neighbors",
			Description: "List the ids of assets directly connected to an asset",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]string{"type": "string", "description": "Asset id"},
				},
				"required": []string{"id"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(args), &p); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
		neighbors, err := graph.Neighbors(ctx, p.ID)
		if err != nil {
			return "", err
		}
		b, _ := json.Marshal(map[string][]string{"neighbors": neighbors})
		return string(b), nil
	})

	reg.Register(llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        "get_information",
			Description: "Get metadata (type, unit, description) for an asset",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]string{"type": "string", "description": "Asset id"},
				},
				"required": []string{"id"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(args), &p); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
		info, err := graph.Info(ctx, p.ID)
		if err != nil {
			return "", err
		}
		b, _ := json.Marshal(info)
		return string(b), nil
	})
}
