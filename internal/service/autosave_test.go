package service

import (
	"context"
	"errors"
	"testing"

	"paperforge/internal/bank"
	"paperforge/internal/domain"
	"paperforge/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutoSaverBelowThresholdDoesNothing(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 10, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 9)...)
	saver.Observe(context.Background())

	assert.Equal(t, 9, saver.Unsaved())
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAutoSaverPersistsSuffixAtThreshold(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 10, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 10)...)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(qs []domain.Question) bool {
		return len(qs) == 10
	})).Return(nil).Once()

	saver.Observe(context.Background())

	assert.Equal(t, 0, saver.Unsaved())
	store.AssertExpectations(t)

	// The next trigger covers only new growth.
	questionBank.Append(makeQuestions(domain.KindNAT, "", 10)...)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(qs []domain.Question) bool {
		return len(qs) == 10 && qs[0].Kind == domain.KindNAT
	})).Return(nil).Once()

	saver.Observe(context.Background())
	assert.Equal(t, 0, saver.Unsaved())
	store.AssertExpectations(t)
}

func TestAutoSaverFailureKeepsSuffixForRetry(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 5, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 5)...)
	store.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	saver.Observe(context.Background())
	assert.Equal(t, 5, saver.Unsaved(), "offset unchanged after a failed save")

	// Retry on the next trigger covers the same suffix plus new growth.
	questionBank.Append(makeQuestions(domain.KindMSQ, "", 2)...)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(qs []domain.Question) bool {
		return len(qs) == 7
	})).Return(nil).Once()

	saver.Observe(context.Background())
	assert.Equal(t, 0, saver.Unsaved())
	store.AssertExpectations(t)
}

func TestAutoSaverFlushIgnoresThreshold(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 100, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 3)...)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(qs []domain.Question) bool {
		return len(qs) == 3
	})).Return(nil).Once()

	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, 0, saver.Unsaved())
}

func TestAutoSaverFlushErrorSurfacesAsPersistence(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 100, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 1)...)
	store.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	err := saver.Flush(context.Background())

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodePersistence, domainErr.Code)
	assert.Equal(t, 1, saver.Unsaved())
}

func TestAutoSaverFlushEmptyBankIsNoop(t *testing.T) {
	store := new(MockQuestionStore)
	saver := NewAutoSaver(bank.NewBank(), store, 10, logger.Get())

	require.NoError(t, saver.Flush(context.Background()))
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAutoSaverMarkSavedAfterStreamLoad(t *testing.T) {
	store := new(MockQuestionStore)
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, store, 10, logger.Get())

	loaded := makeQuestions(domain.KindMCQ, "CSE", 4)
	questionBank.ReplaceAll(loaded)
	saver.Reset()
	saver.MarkSaved(len(loaded))

	assert.Equal(t, 0, saver.Unsaved())
}

func TestAutoSaverWithoutStoreIsInert(t *testing.T) {
	questionBank := bank.NewBank()
	saver := NewAutoSaver(questionBank, nil, 1, logger.Get())

	questionBank.Append(makeQuestions(domain.KindMCQ, "", 5)...)
	saver.Observe(context.Background())
	require.NoError(t, saver.Flush(context.Background()))
}
