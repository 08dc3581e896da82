package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/embedding"
)

// EpisodeIndex stores episode embeddings and recalls similar past
// moments. Supplements the keyword-triggered graph recall with
// semantic similarity.
type EpisodeIndex struct {
	client     *Client
	embedder   embedding.Provider
	collection string
	logger     *zap.Logger
}

const defaultCollection = "episodes"

// NewEpisodeIndex ensures the collection exists and returns an index.
func NewEpisodeIndex(ctx context.Context, client *Client, embedder embedding.Provider, logger *zap.Logger) (*EpisodeIndex, error) {
	dim := embedder.Dimension()
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension unknown; configure it explicitly")
	}
	if err := client.EnsureCollection(ctx, defaultCollection, uint64(dim)); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EpisodeIndex{
		client:     client,
		embedder:   embedder,
		collection: defaultCollection,
		logger:     logger,
	}, nil
}

// Index embeds one episode and upserts it, keyed by the episode ID.
func (ix *EpisodeIndex) Index(ctx context.Context, sessionID, episodeID, content string) error {
	vecs, err := ix.embedder.Embed(ctx, []string{content})
	if err != nil {
		return fmt.Errorf("embed episode: %w", err)
	}
	if len(vecs) == 0 {
		return fmt.Errorf("embed episode: empty result")
	}

	err = ix.client.Upsert(ctx, ix.collection, episodeID, vecs[0], map[string]string{
		"session_id": sessionID,
		"content":    content,
	})
	if err != nil {
		return fmt.Errorf("index episode: %w", err)
	}

	ix.logger.Debug("indexed episode",
		zap.String("session", sessionID),
		zap.String("episode", episodeID))
	return nil
}

// RecalledEpisode is one similarity hit.
type RecalledEpisode struct {
	EpisodeID string  `json:"episode_id"`
	Content   string  `json:"content"`
	Score     float32 `json:"score"`
}

// Similar recalls the session's most similar past episodes for a query
// text.
func (ix *EpisodeIndex) Similar(ctx context.Context, sessionID, query string, topK int) ([]RecalledEpisode, error) {
	vecs, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, nil
	}

	hits, err := ix.client.Search(ctx, ix.collection, vecs[0], uint64(topK),
		map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, err
	}

	out := make([]RecalledEpisode, 0, len(hits))
	for _, h := range hits {
		out = append(out, RecalledEpisode{
			EpisodeID: h.ID,
			Content:   h.Payload["content"],
			Score:     h.Score,
		})
	}
	return out, nil
}
