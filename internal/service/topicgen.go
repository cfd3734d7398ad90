package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"paperforge/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TopicGenService fans out topic-based generation requests in bounded
// batches and streams each topic's questions over a channel as soon as
// the request resolves, so the bank grows before the whole topic set
// finishes. At most BatchSize external calls run at once; a batch settles
// fully before the next starts.
type TopicGenService struct {
	planner   domain.TopicPlanner
	generator domain.TopicGenerator
	batchSize int
	rng       *rand.Rand
	logger    *zap.Logger
}

func NewTopicGenService(
	planner domain.TopicPlanner,
	generator domain.TopicGenerator,
	batchSize int,
	rng *rand.Rand,
	logger *zap.Logger,
) *TopicGenService {
	if batchSize <= 0 {
		batchSize = 3
	}
	return &TopicGenService{
		planner:   planner,
		generator: generator,
		batchSize: batchSize,
		rng:       rng,
		logger:    logger,
	}
}

// Generate resolves the topic list (explicit syllabus or planner-derived,
// shuffled either way to avoid positional bias) and returns a channel of
// question batches. The channel is closed once every batch has settled.
// A failing topic contributes nothing; its siblings are unaffected.
func (s *TopicGenService) Generate(
	ctx context.Context,
	stream string,
	topics []string,
	onProgress func(msg string),
) (<-chan []domain.Question, error) {
	if onProgress == nil {
		onProgress = func(string) {}
	}

	resolved, err := s.resolveTopics(ctx, stream, topics, onProgress)
	if err != nil {
		return nil, err
	}
	onProgress(fmt.Sprintf("Processing %d topics...", len(resolved)))

	results := make(chan []domain.Question)

	go func() {
		defer close(results)

		for i := 0; i < len(resolved); i += s.batchSize {
			if ctx.Err() != nil {
				return
			}
			end := i + s.batchSize
			if end > len(resolved) {
				end = len(resolved)
			}
			batch := resolved[i:end]
			onProgress(fmt.Sprintf("Batch %d: %s", i/s.batchSize+1, strings.Join(batch, ", ")))

			g, gctx := errgroup.WithContext(ctx)
			for _, topic := range batch {
				topic := topic
				g.Go(func() error {
					questions, err := s.generator.GenerateForTopic(gctx, topic, stream)
					if err != nil {
						// Logged and swallowed: one topic failing must not
						// take down its batch siblings.
						s.logger.Warn("Topic generation failed",
							zap.String("topic", topic),
							zap.String("stream", stream),
							zap.Error(err),
						)
						return nil
					}
					if len(questions) == 0 {
						return nil
					}
					select {
					case results <- questions:
					case <-gctx.Done():
					}
					return nil
				})
			}
			// Waits for the whole batch to settle, capping peak concurrency.
			_ = g.Wait()
		}
		onProgress("Generation complete.")
	}()

	return results, nil
}

func (s *TopicGenService) resolveTopics(
	ctx context.Context,
	stream string,
	explicit []string,
	onProgress func(msg string),
) ([]string, error) {
	if len(explicit) > 0 {
		topics := make([]string, len(explicit))
		copy(topics, explicit)
		s.shuffleTopics(topics)
		onProgress(fmt.Sprintf("Using syllabus with %d topics (randomized order)...", len(topics)))
		return topics, nil
	}

	onProgress(fmt.Sprintf("Analyzing syllabus for %s...", stream))
	topics, err := s.planner.PlanTopics(ctx, stream)
	if err != nil || len(topics) == 0 {
		s.logger.Warn("Topic planning failed, using fallback topics",
			zap.String("stream", stream),
			zap.Error(err),
		)
		topics = []string{
			stream + " Advanced Concepts",
			stream + " Complex Calculations",
			stream + " Application Problems",
		}
	}
	s.shuffleTopics(topics)
	return topics, nil
}

func (s *TopicGenService) shuffleTopics(topics []string) {
	s.rng.Shuffle(len(topics), func(i, j int) {
		topics[i], topics[j] = topics[j], topics[i]
	})
}
