// Package assets exposes the industrial asset graph the built-in tools
// query: id/name conversion, asset metadata and topology neighbors.
package assets

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Asset is one node of the asset graph.
type Asset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tag         string   `json:"tag"`
	Type        string   `json:"type"`
	Unit        string   `json:"unit,omitempty"`
	Description string   `json:"description,omitempty"`
	Range       []string `json:"range,omitempty"`
}

// Graph handles Neo4j operations for the asset topology.
type Graph struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewGraph creates a Neo4j-backed asset graph.
func NewGraph(uri, user, password string, logger *zap.Logger) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Graph{driver: driver, logger: logger}, nil
}

// Close shuts down the Neo4j driver.
func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// Ping verifies the Neo4j connection.
func (g *Graph) Ping(ctx context.Context) error {
	return g.driver.VerifyConnectivity(ctx)
}

// NameToID resolves an asset name to its id.
func (g *Graph) NameToID(ctx context.Context, name string) (string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:Asset {name: $name}) RETURN a.id LIMIT 1`,
		map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	if !result.Next(ctx) {
		return "", fmt.Errorf("asset %q not found", name)
	}
	id, _ := result.Record().Get("a.id")
	return id.(string), nil
}

// IDToName resolves an asset id to its name.
func (g *Graph) IDToName(ctx context.Context, id string) (string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:Asset {id: $id}) RETURN a.name LIMIT 1`,
		map[string]any{"id": id})
	if err != nil {
		return "", err
	}
	if !result.Next(ctx) {
		return "", fmt.Errorf("asset %q not found", id)
	}
	name, _ := result.Record().Get("a.name")
	return name.(string), nil
}

// Info returns the metadata stored for an asset.
func (g *Graph) Info(ctx context.Context, id string) (*Asset, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:Asset {id: $id})
		 RETURN a.id, a.name, a.tag, a.type, a.unit, a.description
		 LIMIT 1`,
		map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		return nil, fmt.Errorf("asset %q not found", id)
	}

	rec := result.Record()
	asset := &Asset{ID: id}
	if v, ok := rec.Get("a.name"); ok && v != nil {
		asset.Name = v.(string)
	}
	if v, ok := rec.Get("a.tag"); ok && v != nil {
		asset.Tag = v.(string)
	}
	if v, ok := rec.Get("a.type"); ok && v != nil {
		asset.Type = v.(string)
	}
	if v, ok := rec.Get("a.unit"); ok && v != nil {
		asset.Unit = v.(string)
	}
	if v, ok := rec.Get("a.description"); ok && v != nil {
		asset.Description = v.(string)
	}
	return asset, nil
}

// Neighbors returns the ids of assets directly connected to the given one.
func (g *Graph) Neighbors(ctx context.Context, id string) ([]string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (a:Asset {id: $id})-[:CONNECTED_TO]-(n:Asset)
		 RETURN n.id`,
		map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	var neighbors []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("n.id"); ok && v != nil {
			neighbors = append(neighbors, v.(string))
		}
	}
	return neighbors, nil
}

// AddAsset creates or updates an asset node. Used by ingest jobs and tests.
func (g *Graph) AddAsset(ctx context.Context, asset *Asset) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MERGE (a:Asset {id: $id})
		 SET a.name = $name, a.tag = $tag, a.type = $type,
		     a.unit = $unit, a.description = $description`,
		map[string]any{
			"id":          asset.ID,
			"name":        asset.Name,
			"tag":         asset.Tag,
			"type":        asset.Type,
			"unit":        asset.Unit,
			"description": asset.Description,
		})
	return err
}

// Connect links two assets in the topology.
func (g *Graph) Connect(ctx context.Context, fromID, toID string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (a:Asset {id: $from}), (b:Asset {id: $to})
		 MERGE (a)-[:CONNECTED_TO]->(b)`,
		map[string]any{"from": fromID, "to": toID})
	return err
}
