package memory

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// MatchResult represents how well input matches a concept.
type MatchResult struct {
	Concept *Concept `json:"concept"`
	Score   float64  `json:"score"`
	Method  string   `json:"method"`
}

// MatchThresholds controls when an episode reinforces a concept versus
// spawning a new one.
type MatchThresholds struct {
	Reinforce float64 // score >= this folds the episode in (default 0.8)
	Spawn     float64 // score <= this creates a new concept (default 0.3)
}

func DefaultMatchThresholds() MatchThresholds {
	return MatchThresholds{
		Reinforce: 0.8,
		Spawn:     0.3,
	}
}

// MatchConcepts finds concepts matching the given keywords, sorted by
// score descending.
func (s *Store) MatchConcepts(ctx context.Context, sessionID string, keywords []string) ([]MatchResult, error) {
	start := time.Now()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (c:Concept {session_id: $sessionId})
		 RETURN c.id AS id, c.name AS name, c.description AS desc,
		        c.activation_level AS activation, c.strength AS strength`,
		map[string]interface{}{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}

	var matches []MatchResult
	for result.Next(ctx) {
		rec := result.Record()
		concept := &Concept{SessionID: sessionID}

		if v, ok := rec.Get("id"); ok && v != nil {
			concept.ID = v.(string)
		}
		if v, ok := rec.Get("name"); ok && v != nil {
			concept.Name = v.(string)
		}
		if v, ok := rec.Get("desc"); ok && v != nil {
			concept.Description = v.(string)
		}
		if v, ok := rec.Get("activation"); ok && v != nil {
			concept.ActivationLevel = v.(float64)
		}
		if v, ok := rec.Get("strength"); ok && v != nil {
			concept.Strength = v.(float64)
		}

		score := keywordSimilarity(keywords, concept.Name, concept.Description)
		if score > 0 {
			matches = append(matches, MatchResult{
				Concept: concept,
				Score:   score,
				Method:  "keyword",
			})
		}
	}

	sortMatchResults(matches)

	s.logger.Debug("concept matching complete",
		zap.String("session", sessionID),
		zap.Int("keywords", len(keywords)),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", time.Since(start)))

	return matches, nil
}
