package store

import (
	"context"
	"fmt"
	"time"
)

// EvaluationRecord is one persisted guardrail post-check verdict.
type EvaluationRecord struct {
	QID                string    `json:"q_id"`
	Approved           bool      `json:"approved"`
	Summary            string    `json:"summary"`
	Issues             []string  `json:"issues"`
	Plausibility       string    `json:"plausibility"`
	FactualConsistency string    `json:"factual_consistency"`
	Clarity            string    `json:"clarity"`
	Completeness       string    `json:"completeness"`
	CreatedAt          time.Time `json:"created_at"`
}

// SaveEvaluation upserts the post-check verdict for a request.
func (s *Store) SaveEvaluation(ctx context.Context, e *EvaluationRecord) error {
	now := time.Now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO evaluations (q_id, approved, summary, issues, plausibility,
			factual_consistency, clarity, completeness, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (q_id) DO UPDATE SET
			approved = EXCLUDED.approved,
			summary = EXCLUDED.summary,
			issues = EXCLUDED.issues,
			plausibility = EXCLUDED.plausibility,
			factual_consistency = EXCLUDED.factual_consistency,
			clarity = EXCLUDED.clarity,
			completeness = EXCLUDED.completeness`,
		e.QID, e.Approved, e.Summary, e.Issues, e.Plausibility,
		e.FactualConsistency, e.Clarity, e.Completeness, now,
	)
	if err != nil {
		return fmt.Errorf("save evaluation %s: %w", e.QID, err)
	}
	return nil
}

// GetEvaluation retrieves one verdict by request id.
func (s *Store) GetEvaluation(ctx context.Context, qID string) (*EvaluationRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT q_id, approved, summary, issues, plausibility,
		       factual_consistency, clarity, completeness, created_at
		FROM evaluations WHERE q_id = $1`, qID)

	var e EvaluationRecord
	if err := row.Scan(&e.QID, &e.Approved, &e.Summary, &e.Issues, &e.Plausibility,
		&e.FactualConsistency, &e.Clarity, &e.Completeness, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("get evaluation %s: %w", qID, err)
	}
	return &e, nil
}
