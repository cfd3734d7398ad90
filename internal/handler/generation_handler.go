package handler

import (
	"fmt"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/dto"
	"paperforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GenerationHandler handles AI topic-based bank generation.
type GenerationHandler struct {
	topicGen  *service.TopicGenService
	bank      *bank.Bank
	runLog    *bank.RunLog
	autoSaver *service.AutoSaver
}

func NewGenerationHandler(
	topicGen *service.TopicGenService,
	questionBank *bank.Bank,
	runLog *bank.RunLog,
	autoSaver *service.AutoSaver,
) *GenerationHandler {
	return &GenerationHandler{
		topicGen:  topicGen,
		bank:      questionBank,
		runLog:    runLog,
		autoSaver: autoSaver,
	}
}

// GenerateTopics handles POST /api/generate/topics. Batches land in the
// bank as they arrive, so a cancelled run keeps everything produced so
// far. The response summarizes the whole run.
func (h *GenerationHandler) GenerateTopics(c *fiber.Ctx) error {
	var req dto.TopicGenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid generation request body")
	}
	if req.Stream == "" {
		return domain.NewInvalidInputError("stream is required")
	}

	var progress []string
	onProgress := func(msg string) {
		progress = append(progress, msg)
		h.runLog.Info("TopicGen", msg)
	}

	results, err := h.topicGen.Generate(c.UserContext(), req.Stream, req.Topics, onProgress)
	if err != nil {
		return err
	}

	added := 0
	for batch := range results {
		h.bank.Append(batch...)
		h.autoSaver.Observe(c.UserContext())
		added += len(batch)
	}
	h.runLog.Info("TopicGen", fmt.Sprintf("Generation complete. Added %d questions for %s", added, req.Stream))

	return c.JSON(dto.TopicGenResponse{
		Stream:         req.Stream,
		QuestionsAdded: added,
		Progress:       progress,
	})
}
