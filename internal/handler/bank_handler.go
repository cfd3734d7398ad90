package handler

import (
	"fmt"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/dto"
	"paperforge/internal/export"
	"paperforge/internal/service"
	"paperforge/internal/util"

	"github.com/gofiber/fiber/v2"
)

// BankHandler handles the working bank, persistence, and downloads.
type BankHandler struct {
	bank      *bank.Bank
	queue     *bank.ChunkQueue
	runLog    *bank.RunLog
	store     domain.QuestionStore
	autoSaver *service.AutoSaver
}

func NewBankHandler(
	questionBank *bank.Bank,
	queue *bank.ChunkQueue,
	runLog *bank.RunLog,
	store domain.QuestionStore,
	autoSaver *service.AutoSaver,
) *BankHandler {
	return &BankHandler{
		bank:      questionBank,
		queue:     queue,
		runLog:    runLog,
		store:     store,
		autoSaver: autoSaver,
	}
}

// AddQuestions handles POST /api/questions, importing fully formed
// questions straight into the bank.
func (h *BankHandler) AddQuestions(c *fiber.Ctx) error {
	var req dto.AddQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid questions request body")
	}
	if len(req.Questions) == 0 {
		return domain.NewInvalidInputError("no questions provided")
	}

	questions := make([]domain.Question, 0, len(req.Questions))
	for i, payload := range req.Questions {
		q := payload.ToDomain()
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		if err := q.Validate(); err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("question %d: %v", i, err))
		}
		questions = append(questions, q)
	}

	h.bank.Append(questions...)
	h.autoSaver.Observe(c.UserContext())
	h.runLog.Info("Bank", fmt.Sprintf("Imported %d questions", len(questions)))

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{
		Message: fmt.Sprintf("%d questions added", len(questions)),
	})
}

// GetBank handles GET /api/bank.
func (h *BankHandler) GetBank(c *fiber.Ctx) error {
	snapshot := h.bank.Snapshot()

	resp := dto.BankResponse{
		Size:      len(snapshot),
		Unsaved:   h.autoSaver.Unsaved(),
		Questions: make([]dto.QuestionPayload, 0, len(snapshot)),
	}
	for _, q := range snapshot {
		resp.Questions = append(resp.Questions, dto.QuestionPayloadFromDomain(q))
	}
	return c.JSON(resp)
}

// SaveBank handles POST /api/bank/save, persisting any unsaved suffix.
func (h *BankHandler) SaveBank(c *fiber.Ctx) error {
	pending := h.autoSaver.Unsaved()
	if err := h.autoSaver.Flush(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(dto.SaveResponse{Saved: pending})
}

// LoadStream handles POST /api/bank/load. Loading replaces the working
// bank; when the bank is non-empty the request must carry confirm=true.
func (h *BankHandler) LoadStream(c *fiber.Ctx) error {
	var req dto.LoadStreamRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid load request body")
	}
	if req.Stream == "" {
		return domain.NewInvalidInputError("stream is required")
	}
	if h.bank.Len() > 0 && !req.Confirm {
		return domain.NewInvalidInputError("bank is not empty; set confirm to replace it")
	}

	questions, err := h.store.FetchByStream(c.UserContext(), req.Stream)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if len(questions) == 0 {
		return domain.NewNotFoundError("no questions stored for stream " + req.Stream)
	}

	h.bank.ReplaceAll(questions)
	// Loaded questions came from the store, nothing is unsaved.
	h.autoSaver.Reset()
	h.autoSaver.MarkSaved(len(questions))
	h.runLog.Info("Bank", fmt.Sprintf("Loaded %d questions from stream %s", len(questions), req.Stream))

	return c.JSON(dto.LoadStreamResponse{Stream: req.Stream, Loaded: len(questions)})
}

// ListStreams handles GET /api/streams.
func (h *BankHandler) ListStreams(c *fiber.Ctx) error {
	streams, err := h.store.ListStreams(c.UserContext())
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return c.JSON(dto.StreamsResponse{Streams: streams})
}

// ClearSession handles DELETE /api/session, wiping bank, queue, and log.
func (h *BankHandler) ClearSession(c *fiber.Ctx) error {
	h.bank.Clear()
	h.queue.Clear()
	h.runLog.Clear()
	h.autoSaver.Reset()
	return c.JSON(dto.MessageResponse{Message: "session cleared"})
}

// DownloadBankCSV handles GET /api/bank/csv.
func (h *BankHandler) DownloadBankCSV(c *fiber.Ctx) error {
	content, err := export.BankCSV(h.bank.Snapshot())
	if err != nil {
		return err
	}
	return sendDownload(c, "question_bank.csv", "text/csv", content)
}

// DownloadLogsCSV handles GET /api/logs/csv.
func (h *BankHandler) DownloadLogsCSV(c *fiber.Ctx) error {
	content, err := export.RunLogCSV(h.runLog.Entries())
	if err != nil {
		return err
	}
	return sendDownload(c, "run_logs.csv", "text/csv", content)
}

func sendDownload(c *fiber.Ctx, name, contentType string, content []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(content)
}
