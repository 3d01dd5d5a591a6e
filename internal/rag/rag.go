// Package rag coordinates embedding, knowledge-base retrieval and
// cross-encoder reranking for the QA pipeline.
package rag

import (
	"context"
	"fmt"

	"github.com/nidhogg/parley/internal/domain"
	"github.com/nidhogg/parley/internal/embedding"
	"github.com/nidhogg/parley/internal/vectorstore"
	"go.uber.org/zap"
)

// Searcher is the nearest-neighbor capability the orchestrator retrieves
// candidates from. The Qdrant client satisfies it.
type Searcher interface {
	Search(ctx context.Context, collection string, vector []float32, topK uint64) ([]vectorstore.Hit, error)
}

// Scorer assigns a relevance score to a query/document pair.
type Scorer interface {
	Score(ctx context.Context, query, doc string) (float64, error)
}

// Config holds retrieval settings.
type Config struct {
	Collection          string `json:"collection"`
	RetrievalCandidates int    `json:"retrieval_candidates"`
	RankingCandidates   int    `json:"ranking_candidates"`
}

// Orchestrator exposes the three RAG capabilities the adapter drives:
// embed the question, retrieve candidates, score candidates for reranking.
type Orchestrator struct {
	embedder embedding.Provider
	searcher Searcher
	scorer   Scorer
	config   Config
	logger   *zap.Logger
}

// NewOrchestrator creates a RAG orchestrator.
func NewOrchestrator(embedder embedding.Provider, searcher Searcher, scorer Scorer, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.RetrievalCandidates <= 0 {
		cfg.RetrievalCandidates = 10
	}
	if cfg.RankingCandidates <= 0 {
		cfg.RankingCandidates = 3
	}
	return &Orchestrator{
		embedder: embedder,
		searcher: searcher,
		scorer:   scorer,
		config:   cfg,
		logger:   logger,
	}
}

// RankingCandidates returns how many candidates survive reranking.
func (o *Orchestrator) RankingCandidates() int { return o.config.RankingCandidates }

// Embed returns the embedding vector for a question.
func (o *Orchestrator) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	return vec, nil
}

// Retrieve searches the knowledge base and converts hits into candidates.
func (o *Orchestrator) Retrieve(ctx context.Context, vector []float32) ([]domain.KBResponse, error) {
	hits, err := o.searcher.Search(ctx, o.config.Collection, vector, uint64(o.config.RetrievalCandidates))
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	candidates := make([]domain.KBResponse, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, domain.KBResponse{
			Description: h.Payload["description"],
			Score:       float64(h.Score),
			ID:          h.ID,
			Tag:         h.Payload["tag"],
			Name:        h.Payload["name"],
		})
	}
	o.logger.Debug("retrieved candidates",
		zap.String("collection", o.config.Collection),
		zap.Int("count", len(candidates)))
	return candidates, nil
}

// Score delegates to the cross-encoder scorer.
func (o *Orchestrator) Score(ctx context.Context, query, doc string) (float64, error) {
	return o.scorer.Score(ctx, query, doc)
}
