package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNetworkError("https://example.com", cause)

	assert.Equal(t, "fetch failed for https://example.com: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewNotFoundError("chunk not found")
	assert.Equal(t, "chunk not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNewConfigMismatchErrorCarriesStats(t *testing.T) {
	err := NewConfigMismatchError(map[QuestionKind]KindStats{
		KindNAT: {Requested: 10, Available: 3},
	})

	require.Equal(t, CodeConfigMismatch, err.Code)
	assert.Equal(t, "requested 10, available 3", err.Context["NAT"])
}

func TestConstructorCodes(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, CodeClassification, NewClassificationError(cause).Code)
	assert.Equal(t, CodeRender, NewRenderError("render failed", cause).Code)
	assert.Equal(t, CodePersistence, NewPersistenceError(cause).Code)
	assert.Equal(t, CodeInternal, NewInternalError("oops", cause).Code)
	assert.Equal(t, CodeInvalidInput, NewInvalidInputError("bad").Code)
}

func TestErrCacheMiss(t *testing.T) {
	assert.EqualError(t, ErrCacheMiss, "cache: key not found")
	assert.ErrorIs(t, ErrCacheMiss, ErrCacheMiss)
}
