package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/whisperengine-ai/ai-research/internal/metrics"
)

// TurnRecord is one completed conversation turn with its cognitive trace.
type TurnRecord struct {
	SessionID   string         `json:"session_id"`
	UserInput   string         `json:"user_input"`
	Response    string         `json:"response"`
	UserEmotion string         `json:"user_emotion"`
	BotEmotion  string         `json:"bot_emotion"`
	Temperature float64        `json:"temperature"`
	Score       *metrics.Score `json:"score,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// SaveTurn persists a turn and increments the session turn counter.
func (s *Store) SaveTurn(ctx context.Context, rec TurnRecord) error {
	var scoreJSON []byte
	if rec.Score != nil {
		var err error
		scoreJSON, err = json.Marshal(rec.Score)
		if err != nil {
			return fmt.Errorf("marshal score: %w", err)
		}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO turns (id, session_id, user_input, response, user_emotion, bot_emotion, temperature, score)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)`,
		rec.SessionID, rec.UserInput, rec.Response,
		rec.UserEmotion, rec.BotEmotion, rec.Temperature, scoreJSON,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		UPDATE sessions SET turn_count = turn_count + 1, last_active = now()
		WHERE id = $1`, rec.SessionID)
	if err != nil {
		return fmt.Errorf("bump turn count: %w", err)
	}
	return nil
}

// GetTurns retrieves recent turns for a session, oldest first.
func (s *Store) GetTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT session_id, user_input, response, user_emotion, bot_emotion, temperature, score, created_at
		FROM turns
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("get turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var scoreJSON []byte
		if err := rows.Scan(&rec.SessionID, &rec.UserInput, &rec.Response,
			&rec.UserEmotion, &rec.BotEmotion, &rec.Temperature, &scoreJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if len(scoreJSON) > 0 {
			json.Unmarshal(scoreJSON, &rec.Score)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ScoreTrend returns the overall consciousness score of the most recent turns,
// oldest first, for sessions that track how the metric moves across a dialogue.
func (s *Store) ScoreTrend(ctx context.Context, sessionID string, limit int) ([]float64, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT (score->>'overall_consciousness')::float8
		FROM turns
		WHERE session_id = $1 AND score IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("score trend: %w", err)
	}
	defer rows.Close()

	var trend []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		trend = append(trend, v)
	}
	for i, j := 0, len(trend)-1; i < j; i, j = i+1, j-1 {
		trend[i], trend[j] = trend[j], trend[i]
	}
	return trend, nil
}
