package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBulkFixture(store domain.QuestionStore, renderer PaperRenderer) (*BulkService, *bank.Bank) {
	questionBank := bank.NewBank()
	svc := NewBulkService(questionBank, store, NewSelector(), renderer, rand.New(rand.NewSource(1)), logger.Get())
	return svc, questionBank
}

func archiveNames(t *testing.T, archive []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func simpleCfg(count int) domain.PaperConfig {
	return domain.PaperConfig{
		SubjectName:  "Placeholder",
		DurationMins: 60,
		Sections: []domain.Section{
			{Kind: domain.KindMCQ, Count: count, MarksPerQuestion: 1},
		},
	}
}

func stubRenderer() *MockPaperRenderer {
	renderer := new(MockPaperRenderer)
	renderer.On("RenderPaper", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF-qp"), nil)
	renderer.On("RenderSolutions", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF-sol"), nil)
	return renderer
}

func TestBulkMultiStreamProducesPairsPerStream(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := stubRenderer()
	svc, _ := newBulkFixture(store, renderer)

	store.On("FetchByStream", mock.Anything, "CSE").Return(makeQuestions(domain.KindMCQ, "CSE", 10), nil)
	store.On("FetchByStream", mock.Anything, "ECE").Return(makeQuestions(domain.KindMCQ, "ECE", 10), nil)

	result, err := svc.GenerateMultiStream(context.Background(), []string{"CSE", "ECE"}, simpleCfg(5))

	require.NoError(t, err)
	assert.Equal(t, 4, result.FileCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t,
		[]string{"CSE_QP.pdf", "CSE_SOL.pdf", "ECE_QP.pdf", "ECE_SOL.pdf"},
		archiveNames(t, result.Archive))
}

func TestBulkMultiStreamIsolatesFailures(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := stubRenderer()
	svc, _ := newBulkFixture(store, renderer)

	store.On("FetchByStream", mock.Anything, "Broken").Return(nil, errors.New("connection reset"))
	store.On("FetchByStream", mock.Anything, "Empty").Return([]domain.Question{}, nil)
	store.On("FetchByStream", mock.Anything, "Healthy").Return(makeQuestions(domain.KindMCQ, "Healthy", 8), nil)

	result, err := svc.GenerateMultiStream(context.Background(), []string{"Broken", "Empty", "Healthy"}, simpleCfg(4))

	require.NoError(t, err)
	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Stream 'Broken'")
	assert.Contains(t, result.Errors[1], "Stream 'Empty'")
}

func TestBulkMultiStreamCurrentSessionUsesBank(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := stubRenderer()
	svc, questionBank := newBulkFixture(store, renderer)

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 6)...)

	result, err := svc.GenerateMultiStream(context.Background(), []string{"Current Session (6 Qs)"}, simpleCfg(3))

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Current_Session_QP.pdf", "Current_Session_SOL.pdf"},
		archiveNames(t, result.Archive))
	store.AssertNotCalled(t, "FetchByStream", mock.Anything, mock.Anything)
}

func TestBulkMultiStreamAllFailed(t *testing.T) {
	store := new(MockQuestionStore)
	svc, _ := newBulkFixture(store, stubRenderer())

	store.On("FetchByStream", mock.Anything, mock.Anything).Return([]domain.Question{}, nil)

	_, err := svc.GenerateMultiStream(context.Background(), []string{"A", "B"}, simpleCfg(3))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Message, "no files")
}

func TestBulkMultiSetProducesLabeledSets(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := new(MockPaperRenderer)
	svc, _ := newBulkFixture(store, renderer)

	store.On("FetchByStream", mock.Anything, "GATE CSE").Return(makeQuestions(domain.KindMCQ, "GATE CSE", 20), nil)

	var subjects []string
	renderer.On("RenderPaper", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			subjects = append(subjects, args.Get(2).(domain.PaperConfig).SubjectName)
		}).
		Return([]byte("%PDF-qp"), nil)
	renderer.On("RenderSolutions", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF-sol"), nil)

	result, err := svc.GenerateMultiSet(context.Background(), "GATE CSE", 3, simpleCfg(5))

	require.NoError(t, err)
	assert.Equal(t, 6, result.FileCount)
	assert.Equal(t, []string{
		"GATE CSE - Set A",
		"GATE CSE - Set B",
		"GATE CSE - Set C",
	}, subjects)

	names := archiveNames(t, result.Archive)
	for i := 1; i <= 3; i++ {
		assert.Contains(t, names, fmt.Sprintf("GATE_CSE_Set_%d_QP.pdf", i))
		assert.Contains(t, names, fmt.Sprintf("GATE_CSE_Set_%d_SOL.pdf", i))
	}
}

func TestBulkMultiSetConfigMismatchUpFront(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := new(MockPaperRenderer)
	svc, _ := newBulkFixture(store, renderer)

	// Pool has only MCQ, config demands NAT.
	store.On("FetchByStream", mock.Anything, "CSE").Return(makeQuestions(domain.KindMCQ, "CSE", 20), nil)

	cfg := domain.PaperConfig{
		SubjectName:  "CSE",
		DurationMins: 60,
		Sections:     []domain.Section{{Kind: domain.KindNAT, Count: 5, MarksPerQuestion: 2}},
	}

	_, err := svc.GenerateMultiSet(context.Background(), "CSE", 3, cfg)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeConfigMismatch, domainErr.Code)
	renderer.AssertNotCalled(t, "RenderPaper", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkRejectsNegativeSectionCount(t *testing.T) {
	store := new(MockQuestionStore)
	renderer := new(MockPaperRenderer)
	svc, questionBank := newBulkFixture(store, renderer)
	questionBank.Append(makeQuestions(domain.KindMCQ, "", 6)...)

	_, err := svc.GenerateMultiStream(context.Background(), []string{"Current Session"}, simpleCfg(-3))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)

	_, err = svc.GenerateMultiSet(context.Background(), "Current Session", 2, simpleCfg(-3))

	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
	renderer.AssertNotCalled(t, "RenderPaper", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkMultiSetRejectsNonPositiveCount(t *testing.T) {
	svc, _ := newBulkFixture(new(MockQuestionStore), stubRenderer())

	_, err := svc.GenerateMultiSet(context.Background(), "CSE", 0, simpleCfg(1))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestBulkArchiveNameCarriesDate(t *testing.T) {
	store := new(MockQuestionStore)
	svc, questionBank := newBulkFixture(store, stubRenderer())
	questionBank.Append(makeQuestions(domain.KindMCQ, "", 4)...)

	result, err := svc.GenerateMultiStream(context.Background(), []string{"Current Session"}, simpleCfg(2))

	require.NoError(t, err)
	expected := "Bulk_Question_Papers_" + time.Now().Format("2006-01-02") + ".zip"
	assert.Equal(t, expected, result.ArchiveName)
}
