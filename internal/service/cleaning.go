package service

import (
	"context"
	"time"

	"paperforge/internal/bank"
	"paperforge/internal/domain"

	"go.uber.org/zap"
)

// CleaningStats summarizes one pipeline run.
type CleaningStats struct {
	TotalChunks     int
	ProcessedChunks int
	FailedChunks    int
	QuestionsFound  int
}

// CleaningPipeline drains the ingestion queue sequentially, invoking the
// classifier per chunk and appending extracted questions to the bank as
// soon as each chunk resolves. One outstanding classification call at a
// time, with a fixed delay between chunks to respect external rate limits.
type CleaningPipeline struct {
	queue      *bank.ChunkQueue
	bank       *bank.Bank
	runLog     *bank.RunLog
	classifier domain.Classifier
	delay      time.Duration
	onAppend   func(ctx context.Context)
	logger     *zap.Logger
}

func NewCleaningPipeline(
	queue *bank.ChunkQueue,
	questionBank *bank.Bank,
	runLog *bank.RunLog,
	classifier domain.Classifier,
	delay time.Duration,
	logger *zap.Logger,
) *CleaningPipeline {
	return &CleaningPipeline{
		queue:      queue,
		bank:       questionBank,
		runLog:     runLog,
		classifier: classifier,
		delay:      delay,
		logger:     logger,
	}
}

// SetAppendHook registers a callback fired after each bank append. The
// auto-saver hangs off this hook.
func (p *CleaningPipeline) SetAppendHook(hook func(ctx context.Context)) {
	p.onAppend = hook
}

// BankSize reports the current bank length, for run summaries.
func (p *CleaningPipeline) BankSize() int {
	return p.bank.Len()
}

// Run processes the queue snapshot taken at call time. Only chunks that
// are pending at iteration time are touched; failed chunks are skipped and
// stay failed until explicitly re-queued. A failing classification marks
// that chunk failed and the loop continues with the next one.
func (p *CleaningPipeline) Run(ctx context.Context) (CleaningStats, error) {
	snapshot := p.queue.Snapshot()
	stats := CleaningStats{TotalChunks: len(snapshot)}

	p.runLog.Info("pipeline", "cleaning run started")
	p.logger.Info("Starting cleaning run", zap.Int("chunks", len(snapshot)))

	for i, chunk := range snapshot {
		if err := ctx.Err(); err != nil {
			p.runLog.Warn("pipeline", "cleaning run cancelled")
			return stats, err
		}
		if chunk.Status != domain.ChunkPending {
			continue
		}
		// The snapshot status can be stale; only the atomic claim decides
		// ownership, so a chunk another run already took is skipped here.
		if !p.queue.Claim(chunk.ID) {
			continue
		}

		questions, err := p.classifier.Classify(ctx, chunk)
		if err != nil {
			p.queue.SetStatus(chunk.ID, domain.ChunkFailed, err.Error())
			stats.ProcessedChunks++
			stats.FailedChunks++
			p.runLog.Error("pipeline", "chunk "+chunk.ID+" failed: "+err.Error())
			p.logger.Warn("Classification failed",
				zap.String("chunk_id", chunk.ID),
				zap.String("source", chunk.SourceName),
				zap.Error(err),
			)
		} else {
			// Zero extracted questions is still a completed chunk.
			if len(questions) > 0 {
				p.bank.Append(questions...)
				stats.QuestionsFound += len(questions)
				if p.onAppend != nil {
					p.onAppend(ctx)
				}
			}
			p.queue.SetStatus(chunk.ID, domain.ChunkCompleted, "")
			stats.ProcessedChunks++
			p.logger.Info("Chunk cleaned",
				zap.String("chunk_id", chunk.ID),
				zap.Int("questions", len(questions)),
			)
		}

		if i < len(snapshot)-1 && p.delay > 0 {
			select {
			case <-ctx.Done():
				p.runLog.Warn("pipeline", "cleaning run cancelled")
				return stats, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}

	p.runLog.Info("pipeline", "cleaning run finished")
	p.logger.Info("Cleaning run finished",
		zap.Int("processed", stats.ProcessedChunks),
		zap.Int("failed", stats.FailedChunks),
		zap.Int("questions_found", stats.QuestionsFound),
	)
	return stats, nil
}
