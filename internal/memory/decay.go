package memory

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// DecayConfig controls long-term memory decay.
type DecayConfig struct {
	HalfLifeHours float64 // time for activation to halve (default 168 = 1 week)
	MinActivation float64 // floor value, never decay below this (default 0.05)
	UsageBoost    float64 // activation boost per access (default 0.15)
}

func DefaultDecayConfig() DecayConfig {
	return DecayConfig{
		HalfLifeHours: 168,
		MinActivation: 0.05,
		UsageBoost:    0.15,
	}
}

// DecaySweep applies time-based exponential decay to concept
// activation levels. Run periodically by the maintenance loop.
func (s *Store) DecaySweep(ctx context.Context, sessionID string, cfg DecayConfig) (int, error) {
	if cfg.HalfLifeHours == 0 {
		cfg = DefaultDecayConfig()
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	// activation * 2^(-hours_elapsed / half_life), floored.
	result, err := session.Run(ctx,
		`MATCH (c:Concept {session_id: $sessionId})
		 WHERE c.activation_level > $minAct
		 WITH c,
		      duration.between(c.last_activated, datetime()).hours AS hours
		 WHERE hours > 0
		 SET c.activation_level = CASE
		   WHEN c.activation_level * (0.5 ^ (toFloat(hours) / $halfLife)) < $minAct
		   THEN $minAct
		   ELSE c.activation_level * (0.5 ^ (toFloat(hours) / $halfLife))
		 END
		 RETURN count(c) AS updated`,
		map[string]interface{}{
			"sessionId": sessionID,
			"halfLife":  cfg.HalfLifeHours,
			"minAct":    cfg.MinActivation,
		})
	if err != nil {
		return 0, err
	}

	var updated int
	if result.Next(ctx) {
		if v, ok := result.Record().Get("updated"); ok {
			updated = int(v.(int64))
		}
	}

	s.logger.Info("memory decay sweep complete",
		zap.String("session", sessionID),
		zap.Int("updated", updated))

	return updated, nil
}

// BoostAccess reinforces a concept's activation when it is recalled
// and bumps access counts on its linked episodes.
func (s *Store) BoostAccess(ctx context.Context, conceptID string, cfg DecayConfig) error {
	if cfg.UsageBoost == 0 {
		cfg = DefaultDecayConfig()
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (c:Concept {id: $conceptId})
		 SET c.activation_level = CASE
		       WHEN c.activation_level + $boost > 1.0 THEN 1.0
		       ELSE c.activation_level + $boost
		     END,
		     c.last_activated = datetime()
		 WITH c
		 OPTIONAL MATCH (e:Episode)-[:INSTANCE_OF]->(c)
		 SET e.access_count = e.access_count + 1`,
		map[string]interface{}{
			"conceptId": conceptID,
			"boost":     cfg.UsageBoost,
		})

	return err
}
