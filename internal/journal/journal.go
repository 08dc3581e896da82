// Package journal externalizes the consciousness stream to Redis
// Streams, so thoughts survive process restarts and long sessions do
// not grow resident memory. Wired into the reflection engine as its
// thought sink.
package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/whisperengine-ai/ai-research/internal/metacog"
)

const streamPrefix = "conscious:stream:"

// maxEntries caps each session's stream. XAdd trims approximately,
// which is cheap and close enough for a journal.
const maxEntries = 10000

// Journal writes thoughts to a per-session Redis stream.
type Journal struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(redisURL string, logger *zap.Logger) (*Journal, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{rdb: rdb, logger: logger}, nil
}

// SessionSink binds the journal to one session, satisfying the
// reflection engine's sink contract.
type SessionSink struct {
	j         *Journal
	sessionID string
}

// Sink returns a per-session sink.
func (j *Journal) Sink(sessionID string) *SessionSink {
	return &SessionSink{j: j, sessionID: sessionID}
}

// RecordThought appends one thought to the session's stream.
func (s *SessionSink) RecordThought(ctx context.Context, t metacog.Thought) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	stream := streamPrefix + s.sessionID
	_, err = s.j.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxEntries,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("journal append to %s: %w", stream, err)
	}

	s.j.logger.Debug("journaled thought",
		zap.String("session", s.sessionID),
		zap.Int("level", t.Level),
		zap.String("type", string(t.Type)))
	return nil
}

// Replay reads back up to count thoughts from a session's stream,
// oldest first.
func (j *Journal) Replay(ctx context.Context, sessionID string, count int64) ([]metacog.Thought, error) {
	stream := streamPrefix + sessionID
	msgs, err := j.rdb.XRangeN(ctx, stream, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("journal replay %s: %w", stream, err)
	}

	out := make([]metacog.Thought, 0, len(msgs))
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			continue
		}
		var t metacog.Thought
		if json.Unmarshal([]byte(data), &t) == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// Drop deletes a session's stream. Used by session reset.
func (j *Journal) Drop(ctx context.Context, sessionID string) error {
	return j.rdb.Del(ctx, streamPrefix+sessionID).Err()
}

// Close shuts down the Redis connection.
func (j *Journal) Close() error {
	return j.rdb.Close()
}
