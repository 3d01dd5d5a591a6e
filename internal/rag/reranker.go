package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RerankerConfig holds the cross-encoder scoring endpoint settings.
type RerankerConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
}

// Reranker scores query/document pairs against an HTTP cross-encoder service.
type Reranker struct {
	config RerankerConfig
	http   *http.Client
}

// NewReranker creates a reranker client.
func NewReranker(cfg RerankerConfig) *Reranker {
	return &Reranker{
		config: cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type rerankRequest struct {
	Question string `json:"question"`
	Text     string `json:"text"`
}

type rerankResponse struct {
	Score float64 `json:"score"`
}

// Score returns the relevance of doc to query.
func (r *Reranker) Score(ctx context.Context, query, doc string) (float64, error) {
	body, err := json.Marshal(rerankRequest{Question: query, Text: doc})
	if err != nil {
		return 0, fmt.Errorf("rerank: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("rerank: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.config.APIKey)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rerank: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("rerank: API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("rerank: decode response: %w", err)
	}
	return result.Score, nil
}
