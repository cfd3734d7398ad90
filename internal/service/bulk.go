package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/export"
	"paperforge/internal/util"

	"go.uber.org/zap"
)

// CurrentSessionStream is the sentinel stream label meaning "the questions
// currently accumulated in the in-memory bank" rather than a persisted
// stream. Matching is by substring so UI labels like
// "Current Session (42 Qs)" resolve too.
const CurrentSessionStream = "Current Session"

// PaperRenderer produces the typeset documents for a selection.
type PaperRenderer interface {
	RenderPaper(ctx context.Context, sel domain.Selection, cfg domain.PaperConfig) ([]byte, error)
	RenderSolutions(ctx context.Context, sel domain.Selection, cfg domain.PaperConfig) ([]byte, error)
}

// BulkResult is the outcome of a bulk run: the zip archive (when at least
// one file was produced) plus the per-item errors accumulated on the way.
type BulkResult struct {
	ArchiveName string
	Archive     []byte
	FileCount   int
	Errors      []string
}

// BulkService drives the selector and renderer across many streams or
// many sets, isolating per-item failures so one bad stream or set never
// aborts the batch.
type BulkService struct {
	bank     *bank.Bank
	store    domain.QuestionStore
	selector Selector
	renderer PaperRenderer
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewBulkService(
	questionBank *bank.Bank,
	store domain.QuestionStore,
	selector Selector,
	renderer PaperRenderer,
	rng *rand.Rand,
	logger *zap.Logger,
) *BulkService {
	return &BulkService{
		bank:     questionBank,
		store:    store,
		selector: selector,
		renderer: renderer,
		rng:      rng,
		logger:   logger,
	}
}

// GenerateMultiStream produces one paper+solutions pair per requested
// stream. Streams are processed sequentially; empty pools, unsatisfiable
// configurations, and render failures are recorded per stream and the
// loop continues.
func (s *BulkService) GenerateMultiStream(ctx context.Context, streams []string, cfg domain.PaperConfig) (*BulkResult, error) {
	if err := cfg.ValidateSections(); err != nil {
		return nil, err
	}

	var files []export.File
	var errs []string

	for _, stream := range streams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pool, fileLabel, err := s.resolvePool(ctx, stream)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Stream '%s': %v", stream, err))
			continue
		}
		if len(pool) == 0 {
			errs = append(errs, fmt.Sprintf("Stream '%s': no questions found", stream))
			continue
		}

		streamCfg := cfg
		streamCfg.SubjectName = subjectForStream(stream)

		sel := s.selector.Select(pool, streamCfg, s.rng)
		if sel.Total() == 0 {
			errs = append(errs, fmt.Sprintf("Stream '%s': config mismatch (%s)", stream, statsDetail(sel.Stats)))
			continue
		}

		paper, solutions, err := s.renderPair(ctx, sel, streamCfg)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Stream '%s': %v", stream, err))
			continue
		}

		files = append(files,
			export.File{Name: fileLabel + "_QP.pdf", Content: paper},
			export.File{Name: fileLabel + "_SOL.pdf", Content: solutions},
		)
		s.logger.Info("Bulk stream rendered",
			zap.String("stream", stream),
			zap.Int("questions", sel.Total()),
		)
	}

	return s.finish(files, errs)
}

// GenerateMultiSet validates the configuration against one resolved pool
// up front, then produces the requested number of independently shuffled
// selections labeled Set A, Set B, ... Each set yields a paper+solutions
// pair.
func (s *BulkService) GenerateMultiSet(ctx context.Context, targetStream string, sets int, cfg domain.PaperConfig) (*BulkResult, error) {
	if sets <= 0 {
		return nil, domain.NewInvalidInputError("set count must be positive")
	}
	if err := cfg.ValidateSections(); err != nil {
		return nil, err
	}

	pool, fileLabel, err := s.resolvePool(ctx, targetStream)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.NewNotFoundError("no questions found for stream: " + targetStream)
	}

	// Satisfiability is checked once before any rendering starts.
	probe := s.selector.Select(pool, cfg, s.rng)
	if probe.Total() == 0 {
		return nil, domain.NewConfigMismatchError(probe.Stats)
	}

	var files []export.File
	var errs []string

	for i := 1; i <= sets; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		setCfg := cfg
		setCfg.SubjectName = fmt.Sprintf("%s - Set %c", subjectForStream(targetStream), 'A'+i-1)

		sel := s.selector.Select(pool, setCfg, s.rng)

		paper, solutions, err := s.renderPair(ctx, sel, setCfg)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Set %d: %v", i, err))
			continue
		}

		files = append(files,
			export.File{Name: fmt.Sprintf("%s_Set_%d_QP.pdf", fileLabel, i), Content: paper},
			export.File{Name: fmt.Sprintf("%s_Set_%d_SOL.pdf", fileLabel, i), Content: solutions},
		)
	}

	return s.finish(files, errs)
}

// resolvePool maps a stream label to its question pool: the in-memory
// bank for the current-session sentinel, the store otherwise.
func (s *BulkService) resolvePool(ctx context.Context, stream string) ([]domain.Question, string, error) {
	if strings.Contains(stream, CurrentSessionStream) {
		return s.bank.Snapshot(), "Current_Session", nil
	}
	if s.store == nil {
		return nil, "", domain.NewPersistenceError(fmt.Errorf("no question store configured"))
	}
	pool, err := s.store.FetchByStream(ctx, stream)
	if err != nil {
		return nil, "", domain.NewPersistenceError(err)
	}
	return pool, util.SanitizeFileName(stream), nil
}

func (s *BulkService) renderPair(ctx context.Context, sel domain.Selection, cfg domain.PaperConfig) (paper, solutions []byte, err error) {
	paper, err = s.renderer.RenderPaper(ctx, sel, cfg)
	if err != nil {
		return nil, nil, err
	}
	solutions, err = s.renderer.RenderSolutions(ctx, sel, cfg)
	if err != nil {
		return nil, nil, err
	}
	return paper, solutions, nil
}

func (s *BulkService) finish(files []export.File, errs []string) (*BulkResult, error) {
	if len(files) == 0 {
		if len(errs) > 0 {
			return nil, domain.NewError(domain.CodeInternal,
				"bulk generation produced no files: "+strings.Join(errs, "; "), nil)
		}
		return nil, domain.NewError(domain.CodeInternal, "bulk generation produced no files", nil)
	}

	archive, err := export.BuildZip(files)
	if err != nil {
		return nil, domain.NewRenderError("zip bundling failed", err)
	}

	return &BulkResult{
		ArchiveName: export.ArchiveName(time.Now()),
		Archive:     archive,
		FileCount:   len(files),
		Errors:      errs,
	}, nil
}

func subjectForStream(stream string) string {
	if strings.Contains(stream, CurrentSessionStream) {
		return "Mixed Questions"
	}
	return stream
}

func statsDetail(stats map[domain.QuestionKind]domain.KindStats) string {
	kinds := make([]string, 0, len(stats))
	for kind := range stats {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		st := stats[domain.QuestionKind(kind)]
		parts = append(parts, fmt.Sprintf("%s: req %d/avail %d", kind, st.Requested, st.Available))
	}
	return strings.Join(parts, ", ")
}
