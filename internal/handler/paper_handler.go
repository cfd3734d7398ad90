package handler

import (
	"strings"

	"paperforge/internal/domain"
	"paperforge/internal/dto"
	"paperforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

const zipContentType = "application/zip"
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PaperHandler handles paper assembly and bulk generation downloads.
type PaperHandler struct {
	papers *service.PaperService
	bulk   *service.BulkService
}

func NewPaperHandler(papers *service.PaperService, bulk *service.BulkService) *PaperHandler {
	return &PaperHandler{papers: papers, bulk: bulk}
}

// GeneratePaper handles POST /api/papers/pdf, returning a zip with the
// question paper and the solutions document.
func (h *PaperHandler) GeneratePaper(c *fiber.Ctx) error {
	var req dto.PaperConfigPayload
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid paper configuration body")
	}

	result, err := h.papers.GeneratePDFBundle(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return sendDownload(c, result.ArchiveName, zipContentType, result.Archive)
}

// GenerateWorkbook handles POST /api/papers/xlsx.
func (h *PaperHandler) GenerateWorkbook(c *fiber.Ctx) error {
	var req dto.PaperConfigPayload
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid paper configuration body")
	}

	name, content, err := h.papers.GenerateWorkbook(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return sendDownload(c, name, xlsxContentType, content)
}

// BulkStreams handles POST /api/papers/bulk/streams. Per-stream failures
// are reported in a response header; the archive still carries every
// stream that succeeded.
func (h *PaperHandler) BulkStreams(c *fiber.Ctx) error {
	var req dto.BulkStreamsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid bulk request body")
	}
	if len(req.Streams) == 0 {
		return domain.NewInvalidInputError("no streams provided")
	}

	result, err := h.bulk.GenerateMultiStream(c.UserContext(), req.Streams, req.Config.ToDomain())
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		c.Set(dto.BulkErrorsHeader, strings.Join(result.Errors, "; "))
	}
	return sendDownload(c, result.ArchiveName, zipContentType, result.Archive)
}

// BulkSets handles POST /api/papers/bulk/sets, generating several shuffled
// sets of the same stream in one archive.
func (h *PaperHandler) BulkSets(c *fiber.Ctx) error {
	var req dto.BulkSetsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid bulk request body")
	}

	result, err := h.bulk.GenerateMultiSet(c.UserContext(), req.Stream, req.Sets, req.Config.ToDomain())
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		c.Set(dto.BulkErrorsHeader, strings.Join(result.Errors, "; "))
	}
	return sendDownload(c, result.ArchiveName, zipContentType, result.Archive)
}
