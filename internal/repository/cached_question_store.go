package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"paperforge/internal/cache"
	"paperforge/internal/domain"
	"paperforge/internal/util"

	"go.uber.org/zap"
)

const cacheServiceName = "bank"

// cachedQuestionStore decorates a QuestionStore with a read-through cache.
// Cache failures are logged and ignored so the store remains the source of
// truth.
type cachedQuestionStore struct {
	inner  domain.QuestionStore
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedQuestionStore wraps store with a cache layer. A nil cache
// returns the store unchanged.
func NewCachedQuestionStore(store domain.QuestionStore, c domain.Cache, ttl time.Duration, logger *zap.Logger) domain.QuestionStore {
	if c == nil {
		return store
	}
	return &cachedQuestionStore{inner: store, cache: c, ttl: ttl, logger: logger}
}

func versionKey() string {
	return cache.GenerateCacheKey(cacheServiceName, "stream", "version")
}

func streamListKey() string {
	return cache.GenerateCacheKey(cacheServiceName, "streams", "all")
}

// streamKey embeds the current generation stamp, so fetch entries for any
// query term are orphaned together when the stamp changes. Stream queries
// are substring matches, so per-stream deletes cannot reach every cached
// query an upsert may affect.
func (s *cachedQuestionStore) streamKey(ctx context.Context, stream string) (string, error) {
	version, err := s.cache.Get(ctx, versionKey())
	if errors.Is(err, domain.ErrCacheMiss) {
		version = util.NewULID()
		if err := s.cache.Set(ctx, versionKey(), version, 0); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	return cache.GenerateCacheKey(cacheServiceName, "stream", version, strings.ToLower(strings.TrimSpace(stream))), nil
}

// Upsert writes through to the store, bumps the generation stamp to orphan
// every cached stream query, and drops the stream listing.
func (s *cachedQuestionStore) Upsert(ctx context.Context, questions []domain.Question) error {
	if err := s.inner.Upsert(ctx, questions); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, versionKey(), util.NewULID(), 0); err != nil {
		s.logger.Warn("Failed to bump stream cache generation", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, streamListKey()); err != nil {
		s.logger.Warn("Failed to invalidate stream list cache", zap.Error(err))
	}
	return nil
}

func (s *cachedQuestionStore) FetchByStream(ctx context.Context, stream string) ([]domain.Question, error) {
	key, keyErr := s.streamKey(ctx, stream)
	if keyErr != nil {
		s.logger.Warn("Cache unavailable, falling through to store", zap.Error(keyErr))
	} else {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var questions []domain.Question
			if err := json.Unmarshal([]byte(cached), &questions); err == nil {
				return questions, nil
			}
			s.logger.Warn("Failed to unmarshal cached stream, falling through", zap.String("key", key))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		}
	}

	questions, err := s.inner.FetchByStream(ctx, stream)
	if err != nil {
		return nil, err
	}

	if keyErr == nil {
		if payload, err := json.Marshal(questions); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
				s.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return questions, nil
}

func (s *cachedQuestionStore) ListStreams(ctx context.Context) ([]string, error) {
	key := streamListKey()

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var streams []string
		if err := json.Unmarshal([]byte(cached), &streams); err == nil {
			return streams, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
	}

	streams, err := s.inner.ListStreams(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(streams); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
			s.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return streams, nil
}
