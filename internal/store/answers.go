package store

import (
	"context"
	"fmt"
	"time"
)

// Answer is one persisted pipeline outcome.
type Answer struct {
	QID       string    `json:"q_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Status    string    `json:"status"` // answered|rejected|failed
	CreatedAt time.Time `json:"created_at"`
}

// SaveAnswer upserts the outcome for a request.
func (s *Store) SaveAnswer(ctx context.Context, a *Answer) error {
	now := time.Now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO answers (q_id, question, response, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (q_id) DO UPDATE SET
			question = EXCLUDED.question,
			response = EXCLUDED.response,
			status = EXCLUDED.status`,
		a.QID, a.Question, a.Response, a.Status, now,
	)
	if err != nil {
		return fmt.Errorf("save answer %s: %w", a.QID, err)
	}
	return nil
}

// GetAnswer retrieves one outcome by request id.
func (s *Store) GetAnswer(ctx context.Context, qID string) (*Answer, error) {
	row := s.db.QueryRow(ctx, `
		SELECT q_id, question, response, status, created_at
		FROM answers WHERE q_id = $1`, qID)

	var a Answer
	if err := row.Scan(&a.QID, &a.Question, &a.Response, &a.Status, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("get answer %s: %w", qID, err)
	}
	return &a, nil
}

// ListAnswers returns the most recent outcomes, newest first.
func (s *Store) ListAnswers(ctx context.Context, limit int) ([]*Answer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT q_id, question, response, status, created_at
		FROM answers ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.QID, &a.Question, &a.Response, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, &a)
	}
	return answers, rows.Err()
}
