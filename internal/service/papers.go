package service

import (
	"context"
	"math/rand"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/export"
	"paperforge/internal/util"

	"go.uber.org/zap"
)

// WorkbookBuilder produces the spreadsheet rendition of a selection.
type WorkbookBuilder interface {
	BuildWorkbook(sel domain.Selection, cfg domain.PaperConfig) ([]byte, error)
}

// PaperService generates single papers from the current bank.
type PaperService struct {
	bank     *bank.Bank
	selector Selector
	renderer PaperRenderer
	workbook WorkbookBuilder
	rng      *rand.Rand
	logger   *zap.Logger
}

func NewPaperService(
	questionBank *bank.Bank,
	selector Selector,
	renderer PaperRenderer,
	workbook WorkbookBuilder,
	rng *rand.Rand,
	logger *zap.Logger,
) *PaperService {
	return &PaperService{
		bank:     questionBank,
		selector: selector,
		renderer: renderer,
		workbook: workbook,
		rng:      rng,
		logger:   logger,
	}
}

// GeneratePDFBundle selects from the current bank and returns a zip with
// the question paper and the solutions document. An entirely empty
// selection surfaces as CONFIG_MISMATCH before any rendering starts.
func (s *PaperService) GeneratePDFBundle(ctx context.Context, cfg domain.PaperConfig) (*BulkResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sel := s.selector.Select(s.bank.Snapshot(), cfg, s.rng)
	if sel.Total() == 0 {
		return nil, domain.NewConfigMismatchError(sel.Stats)
	}

	paper, err := s.renderer.RenderPaper(ctx, sel, cfg)
	if err != nil {
		return nil, err
	}
	solutions, err := s.renderer.RenderSolutions(ctx, sel, cfg)
	if err != nil {
		return nil, err
	}

	label := util.SanitizeFileName(cfg.SubjectName)
	files := []export.File{
		{Name: label + "_QP.pdf", Content: paper},
		{Name: label + "_SOL.pdf", Content: solutions},
	}
	archive, err := export.BuildZip(files)
	if err != nil {
		return nil, domain.NewRenderError("zip bundling failed", err)
	}

	s.logger.Info("Paper generated",
		zap.String("subject", cfg.SubjectName),
		zap.Int("questions", sel.Total()),
	)
	return &BulkResult{
		ArchiveName: label + "_paper.zip",
		Archive:     archive,
		FileCount:   len(files),
	}, nil
}

// GenerateWorkbook selects from the current bank and returns the xlsx
// rendition.
func (s *PaperService) GenerateWorkbook(ctx context.Context, cfg domain.PaperConfig) (string, []byte, error) {
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}

	sel := s.selector.Select(s.bank.Snapshot(), cfg, s.rng)
	if sel.Total() == 0 {
		return "", nil, domain.NewConfigMismatchError(sel.Stats)
	}

	content, err := s.workbook.BuildWorkbook(sel, cfg)
	if err != nil {
		return "", nil, domain.NewRenderError("workbook generation failed", err)
	}
	return util.SanitizeFileName(cfg.SubjectName) + ".xlsx", content, nil
}
