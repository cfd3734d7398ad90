package handler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"paperforge/internal/bank"
	"paperforge/internal/collector"
	"paperforge/internal/domain"
	"paperforge/internal/dto"
	"paperforge/internal/logger"
	"paperforge/internal/service"
	"paperforge/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IngestHandler handles source ingestion and the cleaning pipeline.
type IngestHandler struct {
	queue    *bank.ChunkQueue
	runLog   *bank.RunLog
	pdf      *collector.PDFCollector
	scraper  *collector.Scraper
	pipeline *service.CleaningPipeline
}

func NewIngestHandler(
	queue *bank.ChunkQueue,
	runLog *bank.RunLog,
	pdf *collector.PDFCollector,
	scraper *collector.Scraper,
	pipeline *service.CleaningPipeline,
) *IngestHandler {
	return &IngestHandler{
		queue:    queue,
		runLog:   runLog,
		pdf:      pdf,
		scraper:  scraper,
		pipeline: pipeline,
	}
}

// UploadPDF handles POST /api/chunks/pdf. It extracts one chunk per page
// and queues them for cleaning.
func (h *IngestHandler) UploadPDF(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewInvalidInputError("missing PDF upload under field 'file'")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return domain.NewInvalidInputError(fmt.Sprintf("could not open upload: %v", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.NewInternalError("failed to read upload", err)
	}

	chunks, err := h.pdf.Extract(data, fileHeader.Filename)
	if err != nil {
		return err
	}

	h.queue.Add(chunks...)
	h.runLog.Info("PDFService", fmt.Sprintf("Queued %d chunks from %s", len(chunks), fileHeader.Filename))

	return c.Status(fiber.StatusCreated).JSON(chunksAdded(chunks))
}

// ScrapeURLs handles POST /api/chunks/scrape. Failed URLs still produce
// queued chunks in failed state so they stay visible.
func (h *IngestHandler) ScrapeURLs(c *fiber.Ctx) error {
	var req dto.ScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid scrape request body")
	}
	if len(req.URLs) == 0 {
		return domain.NewInvalidInputError("no urls provided")
	}

	cfg := collector.DefaultScraperConfig()
	if req.RateLimitMs > 0 {
		cfg.RateLimit = time.Duration(req.RateLimitMs) * time.Millisecond
	}
	cfg.ContainerSelector = req.ContainerSelector
	cfg.QuestionSelector = req.QuestionSelector
	cfg.OptionSelector = req.OptionSelector

	var added []domain.RawChunk
	err := h.scraper.Scrape(c.UserContext(), req.URLs, cfg, func(chunk domain.RawChunk) {
		h.queue.Add(chunk)
		added = append(added, chunk)
		if chunk.Status == domain.ChunkFailed {
			h.runLog.Error("Scraper", fmt.Sprintf("Failed to scrape %s: %s", chunk.SourceName, chunk.Error))
		} else {
			h.runLog.Info("Scraper", "Successfully extracted content from "+chunk.SourceName)
		}
	})
	if err != nil {
		return domain.NewInternalError("scrape batch aborted", err)
	}

	return c.Status(fiber.StatusCreated).JSON(chunksAdded(added))
}

// AddChunks handles POST /api/chunks for manually pasted source text.
func (h *IngestHandler) AddChunks(c *fiber.Ctx) error {
	var req dto.AddChunksRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid chunks request body")
	}
	if len(req.Chunks) == 0 {
		return domain.NewInvalidInputError("no chunks provided")
	}

	chunks := make([]domain.RawChunk, 0, len(req.Chunks))
	for _, nc := range req.Chunks {
		if strings.TrimSpace(nc.Text) == "" {
			return domain.NewInvalidInputError("chunk text cannot be empty")
		}
		sourceType := domain.SourceType(nc.SourceType)
		if sourceType == "" {
			sourceType = domain.SourcePDF
		}
		chunks = append(chunks, domain.RawChunk{
			ID:         util.NewULID(),
			Text:       nc.Text,
			SourceType: sourceType,
			SourceName: nc.SourceName,
			SourceRef:  nc.SourceRef,
			Status:     domain.ChunkPending,
		})
	}

	h.queue.Add(chunks...)
	h.runLog.Info("Ingest", fmt.Sprintf("Queued %d manual chunks", len(chunks)))

	return c.Status(fiber.StatusCreated).JSON(chunksAdded(chunks))
}

// GetQueue handles GET /api/chunks.
func (h *IngestHandler) GetQueue(c *fiber.Ctx) error {
	snapshot := h.queue.Snapshot()

	counts := make(map[string]int)
	for status, n := range h.queue.CountByStatus() {
		counts[string(status)] = n
	}

	resp := dto.QueueResponse{
		Total:  len(snapshot),
		Counts: counts,
		Chunks: make([]dto.ChunkResponse, 0, len(snapshot)),
	}
	for _, chunk := range snapshot {
		resp.Chunks = append(resp.Chunks, chunkResponse(chunk))
	}
	return c.JSON(resp)
}

// RequeueChunk handles POST /api/chunks/:id/requeue. Only failed chunks
// can be re-queued.
func (h *IngestHandler) RequeueChunk(c *fiber.Ctx) error {
	id := c.Params("id")
	chunk, ok := h.queue.Get(id)
	if !ok {
		return domain.NewNotFoundError("no chunk with id " + id)
	}
	if !h.queue.Requeue(id) {
		return domain.NewInvalidInputError(fmt.Sprintf("chunk %s is %s, only failed chunks can be re-queued", id, chunk.Status))
	}

	h.runLog.Info("Ingest", "Re-queued chunk "+id)
	return c.JSON(dto.MessageResponse{Message: "chunk re-queued"})
}

// RunPipeline handles POST /api/pipeline/run. The run is synchronous;
// cancelling the request cancels the run between chunks.
func (h *IngestHandler) RunPipeline(c *fiber.Ctx) error {
	stats, err := h.pipeline.Run(c.UserContext())
	if err != nil {
		logger.Get().Warn("Cleaning run ended early", zap.Error(err))
	}

	return c.JSON(dto.CleaningRunResponse{
		TotalChunks:     stats.TotalChunks,
		ProcessedChunks: stats.ProcessedChunks,
		FailedChunks:    stats.FailedChunks,
		QuestionsFound:  stats.QuestionsFound,
		BankSize:        h.pipeline.BankSize(),
	})
}

func chunkResponse(chunk domain.RawChunk) dto.ChunkResponse {
	return dto.ChunkResponse{
		ID:         chunk.ID,
		SourceType: string(chunk.SourceType),
		SourceName: chunk.SourceName,
		SourceRef:  chunk.SourceRef,
		Status:     string(chunk.Status),
		Error:      chunk.Error,
		RetryCount: chunk.RetryCount,
		TextLength: len(chunk.Text),
	}
}

func chunksAdded(chunks []domain.RawChunk) dto.ChunksAddedResponse {
	resp := dto.ChunksAddedResponse{
		Added:  len(chunks),
		Chunks: make([]dto.ChunkResponse, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		resp.Chunks = append(resp.Chunks, chunkResponse(chunk))
	}
	return resp
}
