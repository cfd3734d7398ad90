package domain

import (
	"context"
	"image"
	"time"
)

// Classifier turns raw chunk text into structured question candidates.
// A zero-length result is a valid outcome, not an error.
type Classifier interface {
	Classify(ctx context.Context, chunk RawChunk) ([]Question, error)
}

// TopicPlanner asks the AI planning capability for a short topic list.
type TopicPlanner interface {
	PlanTopics(ctx context.Context, stream string) ([]string, error)
}

// TopicGenerator synthesizes questions for a single topic, tagging each
// result with a provenance URL or a generic search marker.
type TopicGenerator interface {
	GenerateForTopic(ctx context.Context, topic, stream string) ([]Question, error)
}

// QuestionStore is the persisted question archive. Upsert is idempotent,
// keyed by question id.
type QuestionStore interface {
	Upsert(ctx context.Context, questions []Question) error
	FetchByStream(ctx context.Context, stream string) ([]Question, error)
	ListStreams(ctx context.Context) ([]string, error)
}

// RichContentRenderer converts mixed math/image markup into a rasterized
// block sized to the given pixel width. A (nil, nil) return signals the
// renderer is unavailable and the caller must fall back to plain text.
type RichContentRenderer interface {
	Render(ctx context.Context, markup string, widthPx int) (image.Image, error)
}

// CacheError represents cache level errors.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache abstracts the redis-backed cache used in front of the store.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
