package domain

import "fmt"

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Pipeline and generation errors
	CodeClassification ErrorCode = "CLASSIFICATION_ERROR"
	CodeRender         ErrorCode = "RENDER_ERROR"
	CodePersistence    ErrorCode = "PERSISTENCE_ERROR"
	CodeConfigMismatch ErrorCode = "CONFIG_MISMATCH"
	CodeNetwork        ErrorCode = "NETWORK_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// NewClassificationError wraps a failed AI cleaning/extraction call.
func NewClassificationError(cause error) *DomainError {
	return NewError(CodeClassification, "classification call failed", cause)
}

// NewRenderError wraps a fatal document assembly failure.
func NewRenderError(message string, cause error) *DomainError {
	return NewError(CodeRender, message, cause)
}

// NewPersistenceError wraps a failed store write or query.
func NewPersistenceError(cause error) *DomainError {
	return NewError(CodePersistence, "question store unavailable", cause)
}

// NewConfigMismatchError reports that the requested section counts cannot
// be met by the pool. Per-kind detail goes into Context.
func NewConfigMismatchError(stats map[QuestionKind]KindStats) *DomainError {
	ctx := make(map[string]interface{}, len(stats))
	for kind, st := range stats {
		ctx[string(kind)] = fmt.Sprintf("requested %d, available %d", st.Requested, st.Available)
	}
	return &DomainError{
		Code:    CodeConfigMismatch,
		Message: "paper configuration exceeds available questions",
		Context: ctx,
	}
}

// NewNetworkError wraps a failed scrape or fetch.
func NewNetworkError(target string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeNetwork,
		Message: fmt.Sprintf("fetch failed for %s", target),
		Cause:   cause,
	}
}
