package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"paperforge/internal/bank"
	"paperforge/internal/config"
	"paperforge/internal/domain"
	"paperforge/internal/dto"
	"paperforge/internal/handler"
	"paperforge/internal/logger"
	"paperforge/internal/middleware"
	"paperforge/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		panic(err)
	}
	m.Run()
}

// MockQuestionStore is a manual func-based mock of domain.QuestionStore.
type MockQuestionStore struct {
	UpsertFunc        func(ctx context.Context, questions []domain.Question) error
	FetchByStreamFunc func(ctx context.Context, stream string) ([]domain.Question, error)
	ListStreamsFunc   func(ctx context.Context) ([]string, error)
}

func (m *MockQuestionStore) Upsert(ctx context.Context, questions []domain.Question) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, questions)
	}
	return nil
}

func (m *MockQuestionStore) FetchByStream(ctx context.Context, stream string) ([]domain.Question, error) {
	if m.FetchByStreamFunc != nil {
		return m.FetchByStreamFunc(ctx, stream)
	}
	panic("MockQuestionStore.FetchByStreamFunc not implemented")
}

func (m *MockQuestionStore) ListStreams(ctx context.Context) ([]string, error) {
	if m.ListStreamsFunc != nil {
		return m.ListStreamsFunc(ctx)
	}
	panic("MockQuestionStore.ListStreamsFunc not implemented")
}

type bankFixture struct {
	app   *fiber.App
	bank  *bank.Bank
	store *MockQuestionStore
}

func newBankFixture() *bankFixture {
	questionBank := bank.NewBank()
	queue := bank.NewChunkQueue()
	runLog := bank.NewRunLog()
	store := &MockQuestionStore{}
	autoSaver := service.NewAutoSaver(questionBank, store, 10, logger.Get())
	h := handler.NewBankHandler(questionBank, queue, runLog, store, autoSaver)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	api := app.Group("/api")
	api.Post("/questions", h.AddQuestions)
	api.Get("/bank", h.GetBank)
	api.Post("/bank/save", h.SaveBank)
	api.Post("/bank/load", h.LoadStream)
	api.Get("/bank/csv", h.DownloadBankCSV)
	api.Get("/streams", h.ListStreams)
	api.Delete("/session", h.ClearSession)

	return &bankFixture{app: app, bank: questionBank, store: store}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, content
}

func mcqPayload(question string) dto.QuestionPayload {
	return dto.QuestionPayload{
		Type:     string(domain.KindMCQ),
		Question: question,
		Options:  dto.OptionsPayload{A: "w", B: "x", C: "y", D: "z"},
		Answer:   "A",
	}
}

func TestAddQuestionsAppendsToBank(t *testing.T) {
	f := newBankFixture()

	status, _ := doJSON(t, f.app, "POST", "/api/questions", dto.AddQuestionsRequest{
		Questions: []dto.QuestionPayload{mcqPayload("First?"), mcqPayload("Second?")},
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, 2, f.bank.Len())
	// Missing qids are backfilled.
	for _, q := range f.bank.Snapshot() {
		assert.NotEmpty(t, q.ID)
	}
}

func TestAddQuestionsRejectsEmptyBody(t *testing.T) {
	f := newBankFixture()

	status, body := doJSON(t, f.app, "POST", "/api/questions", dto.AddQuestionsRequest{})

	assert.Equal(t, fiber.StatusBadRequest, status)
	var errResp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, string(domain.CodeInvalidInput), errResp.Code)
}

func TestAddQuestionsRejectsInvalidQuestion(t *testing.T) {
	f := newBankFixture()

	nat := dto.QuestionPayload{
		Type:     string(domain.KindNAT),
		Question: "Compute.",
		Options:  dto.OptionsPayload{A: "should not be here"},
	}
	status, _ := doJSON(t, f.app, "POST", "/api/questions", dto.AddQuestionsRequest{
		Questions: []dto.QuestionPayload{nat},
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Zero(t, f.bank.Len())
}

func TestGetBankReportsSizeAndUnsaved(t *testing.T) {
	f := newBankFixture()
	f.bank.Append(domain.Question{ID: "q1", Kind: domain.KindMCQ, Prompt: "P?"})

	status, body := doJSON(t, f.app, "GET", "/api/bank", nil)

	require.Equal(t, fiber.StatusOK, status)
	var resp dto.BankResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 1, resp.Size)
	assert.Equal(t, 1, resp.Unsaved)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "q1", resp.Questions[0].QID)
}

func TestSaveBankFlushesUnsaved(t *testing.T) {
	f := newBankFixture()
	var saved []domain.Question
	f.store.UpsertFunc = func(ctx context.Context, questions []domain.Question) error {
		saved = questions
		return nil
	}
	f.bank.Append(domain.Question{ID: "q1", Kind: domain.KindMCQ, Prompt: "P?"})

	status, body := doJSON(t, f.app, "POST", "/api/bank/save", nil)

	require.Equal(t, fiber.StatusOK, status)
	var resp dto.SaveResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 1, resp.Saved)
	require.Len(t, saved, 1)
	assert.Equal(t, "q1", saved[0].ID)
}

func TestLoadStreamRequiresConfirmOverNonEmptyBank(t *testing.T) {
	f := newBankFixture()
	f.bank.Append(domain.Question{ID: "existing", Kind: domain.KindMCQ, Prompt: "P?"})

	status, _ := doJSON(t, f.app, "POST", "/api/bank/load", dto.LoadStreamRequest{Stream: "CSE"})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "existing", f.bank.Snapshot()[0].ID)
}

func TestLoadStreamReplacesBank(t *testing.T) {
	f := newBankFixture()
	f.bank.Append(domain.Question{ID: "existing", Kind: domain.KindMCQ, Prompt: "P?"})
	f.store.FetchByStreamFunc = func(ctx context.Context, stream string) ([]domain.Question, error) {
		assert.Equal(t, "CSE", stream)
		return []domain.Question{
			{ID: "s1", Kind: domain.KindMCQ, Stream: "CSE", Prompt: "Stored?"},
			{ID: "s2", Kind: domain.KindNAT, Stream: "CSE", Prompt: "Stored too?"},
		}, nil
	}

	status, body := doJSON(t, f.app, "POST", "/api/bank/load", dto.LoadStreamRequest{Stream: "CSE", Confirm: true})

	require.Equal(t, fiber.StatusOK, status)
	var resp dto.LoadStreamResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 2, resp.Loaded)
	assert.Equal(t, 2, f.bank.Len())
	assert.Equal(t, "s1", f.bank.Snapshot()[0].ID)
}

func TestLoadStreamUnknownStreamIs404(t *testing.T) {
	f := newBankFixture()
	f.store.FetchByStreamFunc = func(ctx context.Context, stream string) ([]domain.Question, error) {
		return nil, nil
	}

	status, _ := doJSON(t, f.app, "POST", "/api/bank/load", dto.LoadStreamRequest{Stream: "Nope"})

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListStreamsErrorMapsTo500(t *testing.T) {
	f := newBankFixture()
	f.store.ListStreamsFunc = func(ctx context.Context) ([]string, error) {
		return nil, errors.New("database is locked")
	}

	status, body := doJSON(t, f.app, "GET", "/api/streams", nil)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	var errResp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, string(domain.CodePersistence), errResp.Code)
}

func TestClearSessionWipesState(t *testing.T) {
	f := newBankFixture()
	f.bank.Append(domain.Question{ID: "q1", Kind: domain.KindMCQ, Prompt: "P?"})

	status, _ := doJSON(t, f.app, "DELETE", "/api/session", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, f.bank.Len())
}

func TestDownloadBankCSVSetsDisposition(t *testing.T) {
	f := newBankFixture()
	f.bank.Append(domain.Question{ID: "q1", Kind: domain.KindMCQ, Prompt: "P?"})

	req := httptest.NewRequest("GET", "/api/bank/csv", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="question_bank.csv"`)

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "q1")
}
