// Package memory is the long-term episodic store backed by Neo4j.
// Conversation turns become Episode nodes, recurring themes become
// Concept nodes, and recall runs spreading activation over the graph.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Store handles Neo4j operations for episodic memory.
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore creates a Neo4j-backed episodic store.
func NewStore(uri, user, password string, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{driver: driver, logger: logger}, nil
}

// Close shuts down the Neo4j driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping verifies the Neo4j connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// CreateConcept creates a concept node.
func (s *Store) CreateConcept(ctx context.Context, c *Concept) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()
	c.LastActivated = c.CreatedAt

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`CREATE (c:Concept {
			id: $id, session_id: $sessionId, name: $name,
			description: $desc, activation_level: 0.0,
			strength: $strength, created_at: datetime(),
			last_activated: datetime()
		})`,
		map[string]interface{}{
			"id":        c.ID,
			"sessionId": c.SessionID,
			"name":      c.Name,
			"desc":      c.Description,
			"strength":  c.Strength,
		})
	return err
}

// CreateEpisode creates an episode node.
func (s *Store) CreateEpisode(ctx context.Context, ep *Episode) error {
	if ep.ID == "" {
		ep.ID = uuid.New().String()
	}
	ep.CreatedAt = time.Now()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`CREATE (e:Episode {
			id: $id, session_id: $sessionId,
			content: $content, emotion: $emotion,
			importance: $importance,
			access_count: 0, created_at: datetime()
		})`,
		map[string]interface{}{
			"id":         ep.ID,
			"sessionId":  ep.SessionID,
			"content":    ep.Content,
			"emotion":    ep.Emotion,
			"importance": ep.Importance,
		})
	return err
}

// GetEpisodes returns a session's episodes, most important first.
func (s *Store) GetEpisodes(ctx context.Context, sessionID string, limit int) ([]*Episode, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (e:Episode {session_id: $sessionId})
		 RETURN e.id, e.content, e.emotion, e.importance, e.access_count
		 ORDER BY e.importance DESC LIMIT $limit`,
		map[string]interface{}{"sessionId": sessionID, "limit": limit})
	if err != nil {
		return nil, err
	}

	var episodes []*Episode
	for result.Next(ctx) {
		rec := result.Record()
		id, _ := rec.Get("e.id")
		content, _ := rec.Get("e.content")
		emotion, _ := rec.Get("e.emotion")
		importance, _ := rec.Get("e.importance")
		accessCount, _ := rec.Get("e.access_count")
		episodes = append(episodes, &Episode{
			ID:          id.(string),
			SessionID:   sessionID,
			Content:     content.(string),
			Emotion:     emotion.(string),
			Importance:  importance.(float64),
			AccessCount: int(accessCount.(int64)),
		})
	}
	return episodes, nil
}

// LinkEpisodeToConcept creates an INSTANCE_OF relationship.
func (s *Store) LinkEpisodeToConcept(ctx context.Context, episodeID, conceptID string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (e:Episode {id: $epId}), (c:Concept {id: $conceptId})
		 MERGE (e)-[:INSTANCE_OF]->(c)`,
		map[string]interface{}{"epId": episodeID, "conceptId": conceptID})
	return err
}
