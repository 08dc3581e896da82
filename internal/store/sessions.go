package store

import (
	"context"
	"fmt"
	"time"
)

// SessionRow is a persisted chat session.
type SessionRow struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	TurnCount  int       `json:"turn_count"`
}

// TouchSession upserts a session row and bumps its activity timestamp.
func (s *Store) TouchSession(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sessions (id, created_at, last_active, turn_count)
		VALUES ($1, now(), now(), 0)
		ON CONFLICT (id) DO UPDATE SET last_active = now()`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	return nil
}

// GetSession retrieves a single session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*SessionRow, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, created_at, last_active, turn_count
		FROM sessions WHERE id = $1`, sessionID)

	var r SessionRow
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.LastActive, &r.TurnCount); err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return &r, nil
}

// ListSessions returns sessions ordered by most recent activity.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, created_at, last_active, turn_count
		FROM sessions ORDER BY last_active DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.LastActive, &r.TurnCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, &r)
	}
	return out, nil
}
