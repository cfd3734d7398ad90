// Package bank holds the in-memory session state: the append-only question
// bank, the ingestion queue, and the run log.
package bank

import (
	"sync"

	"paperforge/internal/domain"
)

// Bank is the accumulated collection of classified questions for the
// current session. Appends are atomic with respect to any observer; a
// Snapshot never sees a partially applied batch.
type Bank struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewBank() *Bank {
	return &Bank{}
}

// Append adds questions to the end of the bank as a single atomic batch.
func (b *Bank) Append(questions ...domain.Question) {
	if len(questions) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = append(b.questions, questions...)
}

// Snapshot returns a copy of the current bank contents.
func (b *Bank) Snapshot() []domain.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Slice returns a copy of bank[from:]. Used by the auto-saver to persist
// only the unsaved suffix.
func (b *Bank) Slice(from int) []domain.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	if from >= len(b.questions) {
		return nil
	}
	out := make([]domain.Question, len(b.questions)-from)
	copy(out, b.questions[from:])
	return out
}

func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// ReplaceAll swaps the bank contents for a stream loaded from the store.
func (b *Bank) ReplaceAll(questions []domain.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = make([]domain.Question, len(questions))
	copy(b.questions, questions)
}

// Clear drops every question. The only removal operation the bank supports.
func (b *Bank) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = nil
}
