package service

import (
	"context"
	"sync"

	"paperforge/internal/bank"
	"paperforge/internal/domain"

	"go.uber.org/zap"
)

// AutoSaver watches bank growth against the last persisted offset and
// persists the unsaved suffix once the threshold is crossed. A failed save
// leaves the offset unchanged so the same suffix is retried on the next
// trigger; there is no immediate retry.
type AutoSaver struct {
	bank      *bank.Bank
	store     domain.QuestionStore
	threshold int

	mu        sync.Mutex
	lastSaved int
	inFlight  bool

	logger *zap.Logger
}

func NewAutoSaver(questionBank *bank.Bank, store domain.QuestionStore, threshold int, logger *zap.Logger) *AutoSaver {
	if threshold <= 0 {
		threshold = 10
	}
	return &AutoSaver{
		bank:      questionBank,
		store:     store,
		threshold: threshold,
		logger:    logger,
	}
}

// Observe is called after bank appends. It issues at most one persistence
// call per trigger, covering bank[lastSaved:], and only when the unsaved
// delta has reached the threshold, no save is in flight, and a store is
// configured.
func (a *AutoSaver) Observe(ctx context.Context) {
	if a.store == nil {
		return
	}

	a.mu.Lock()
	if a.inFlight || a.bank.Len()-a.lastSaved < a.threshold {
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	from := a.lastSaved
	a.mu.Unlock()

	a.save(ctx, from)
}

// Flush persists any unsaved suffix regardless of the threshold. Used on
// explicit user save and before loading a stream over unsaved data.
func (a *AutoSaver) Flush(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	a.mu.Lock()
	if a.inFlight || a.bank.Len() == a.lastSaved {
		a.mu.Unlock()
		return nil
	}
	a.inFlight = true
	from := a.lastSaved
	a.mu.Unlock()

	return a.save(ctx, from)
}

func (a *AutoSaver) save(ctx context.Context, from int) error {
	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	suffix := a.bank.Slice(from)
	newLen := from + len(suffix)
	if len(suffix) == 0 {
		return nil
	}

	if err := a.store.Upsert(ctx, suffix); err != nil {
		// Offset unchanged: the same suffix is retried next trigger.
		a.logger.Error("Auto-save failed", zap.Int("unsaved", len(suffix)), zap.Error(err))
		return domain.NewPersistenceError(err)
	}

	a.mu.Lock()
	a.lastSaved = newLen
	a.mu.Unlock()
	a.logger.Info("Auto-saved questions", zap.Int("count", len(suffix)), zap.Int("offset", newLen))
	return nil
}

// MarkSaved records that the bank contents up to length n are already
// persisted, e.g. right after loading a stream from the store.
func (a *AutoSaver) MarkSaved(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSaved = n
}

// Unsaved reports how many bank questions are not yet persisted.
func (a *AutoSaver) Unsaved() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.bank.Len() - a.lastSaved
	if n < 0 {
		return 0
	}
	return n
}

// Reset clears the persisted offset, used together with Bank.Clear.
func (a *AutoSaver) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSaved = 0
}
