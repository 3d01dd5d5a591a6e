// Package config loads the JSON configuration with environment variable
// substitution.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig        `json:"server"`
	LLM           LLMConfig           `json:"llm"`
	Guardrails    LLMConfig           `json:"guardrails"`
	RAG           RAGConfig           `json:"rag"`
	Tools         ToolsConfig         `json:"tools"`
	Database      DatabaseConfig      `json:"database"`
	Notifications NotificationsConfig `json:"notifications"`
	Prompts       PromptsConfig       `json:"prompts"`
	MigrationsDir string              `json:"migrations_dir"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

// LLMConfig configures one OpenAI-compatible model endpoint. The guardrail
// model and the answer model are two instances of this section.
type LLMConfig struct {
	Endpoint    string  `json:"endpoint"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

type RAGConfig struct {
	Embedding           EmbeddingConfig `json:"embedding"`
	RerankEndpoint      string          `json:"rerank_endpoint"`
	RerankAPIKey        string          `json:"rerank_api_key"`
	Qdrant              QdrantConfig    `json:"qdrant"`
	Collection          string          `json:"collection"`
	RetrievalCandidates int             `json:"retrieval_candidates"`
	RankingCandidates   int             `json:"ranking_candidates"`
}

type EmbeddingConfig struct {
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type ToolsConfig struct {
	Model string `json:"model"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `json:"postgres"`
	Neo4j    Neo4jConfig    `json:"neo4j"`
	Redis    RedisConfig    `json:"redis"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

type Neo4jConfig struct {
	URI      string `json:"uri"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

type NotificationsConfig struct {
	Slack   SlackConfig   `json:"slack"`
	Discord DiscordConfig `json:"discord"`
}

type SlackConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	Channel string `json:"channel"`
}

type DiscordConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	Channel string `json:"channel"`
}

type PromptsConfig struct {
	QA  string `json:"qa"`
	SQL string `json:"sql"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
