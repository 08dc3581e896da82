package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ConsolidationAction describes what happened when an episode was
// recorded.
type ConsolidationAction string

const (
	ActionReinforce ConsolidationAction = "reinforce"
	ActionNew       ConsolidationAction = "new_concept"
	ActionPartial   ConsolidationAction = "partial_link"
)

// ConsolidationResult captures the outcome of recording an episode.
type ConsolidationResult struct {
	Action    ConsolidationAction `json:"action"`
	ConceptID string              `json:"concept_id"`
	EpisodeID string              `json:"episode_id"`
	Score     float64             `json:"score"`
	Detail    string              `json:"detail"`
}

// Record stores a conversation moment and folds it into the concept
// graph: a strong match reinforces the matching concept, no match
// spawns a fresh one, a weak match only links.
func (s *Store) Record(ctx context.Context, sessionID, content, emotion string, keywords []string, importance float64) (*ConsolidationResult, error) {
	thresholds := DefaultMatchThresholds()

	ep := &Episode{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Content:    content,
		Emotion:    emotion,
		Importance: importance,
	}
	if err := s.CreateEpisode(ctx, ep); err != nil {
		return nil, err
	}

	matches, err := s.MatchConcepts(ctx, sessionID, keywords)
	if err != nil {
		return nil, err
	}

	if len(matches) > 0 && matches[0].Score >= thresholds.Reinforce {
		return s.reinforce(ctx, ep, matches[0])
	}
	if len(matches) == 0 || matches[0].Score <= thresholds.Spawn {
		return s.spawn(ctx, sessionID, ep, keywords)
	}
	return s.partialLink(ctx, ep, matches[0])
}

// reinforce folds the episode into an existing concept, boosting its
// strength and activation.
func (s *Store) reinforce(ctx context.Context, ep *Episode, match MatchResult) (*ConsolidationResult, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (e:Episode {id: $epId}), (c:Concept {id: $conceptId})
		 MERGE (e)-[:INSTANCE_OF {score: $score}]->(c)
		 SET c.strength = c.strength + (1.0 - c.strength) * 0.1,
		     c.activation_level = CASE
		       WHEN c.activation_level + 0.2 > 1.0 THEN 1.0
		       ELSE c.activation_level + 0.2
		     END,
		     c.last_activated = datetime()`,
		map[string]interface{}{
			"epId":      ep.ID,
			"conceptId": match.Concept.ID,
			"score":     match.Score,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reinforced concept with episode",
		zap.String("episode", ep.ID),
		zap.String("concept", match.Concept.Name),
		zap.Float64("score", match.Score))

	return &ConsolidationResult{
		Action:    ActionReinforce,
		ConceptID: match.Concept.ID,
		EpisodeID: ep.ID,
		Score:     match.Score,
		Detail:    "reinforced existing concept: " + match.Concept.Name,
	}, nil
}

// spawn creates a new concept when the episode fits nothing known.
func (s *Store) spawn(ctx context.Context, sessionID string, ep *Episode, keywords []string) (*ConsolidationResult, error) {
	concept := &Concept{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Name:        strings.Join(keywords, "_"),
		Description: ep.Content,
		Strength:    0.5,
	}
	if err := s.CreateConcept(ctx, concept); err != nil {
		return nil, err
	}

	if err := s.LinkEpisodeToConcept(ctx, ep.ID, concept.ID); err != nil {
		return nil, err
	}

	s.logger.Info("spawned new concept",
		zap.String("episode", ep.ID),
		zap.String("concept", concept.Name))

	return &ConsolidationResult{
		Action:    ActionNew,
		ConceptID: concept.ID,
		EpisodeID: ep.ID,
		Score:     0,
		Detail:    "created new concept: " + concept.Name,
	}, nil
}

// partialLink ties the episode to a loosely matching concept and nudges
// its activation without strengthening it.
func (s *Store) partialLink(ctx context.Context, ep *Episode, match MatchResult) (*ConsolidationResult, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (e:Episode {id: $epId}), (c:Concept {id: $conceptId})
		 MERGE (e)-[:RELATED_TO {score: $score}]->(c)
		 SET c.activation_level = CASE
		       WHEN c.activation_level + 0.1 > 1.0 THEN 1.0
		       ELSE c.activation_level + 0.1
		     END,
		     c.last_activated = datetime()`,
		map[string]interface{}{
			"epId":      ep.ID,
			"conceptId": match.Concept.ID,
			"score":     match.Score,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("partial concept link",
		zap.String("episode", ep.ID),
		zap.String("concept", match.Concept.Name),
		zap.Float64("score", match.Score))

	return &ConsolidationResult{
		Action:    ActionPartial,
		ConceptID: match.Concept.ID,
		EpisodeID: ep.ID,
		Score:     match.Score,
		Detail:    "partial match with concept: " + match.Concept.Name,
	}, nil
}
