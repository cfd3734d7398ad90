package bank

import (
	"sync"

	"paperforge/internal/domain"
)

// ChunkQueue is the ordered ingestion queue. Collectors append chunks; the
// cleaning pipeline owns all status transitions.
type ChunkQueue struct {
	mu     sync.RWMutex
	chunks []domain.RawChunk
	index  map[string]int
}

func NewChunkQueue() *ChunkQueue {
	return &ChunkQueue{index: make(map[string]int)}
}

// Add appends chunks to the queue.
func (q *ChunkQueue) Add(chunks ...domain.RawChunk) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range chunks {
		q.index[c.ID] = len(q.chunks)
		q.chunks = append(q.chunks, c)
	}
}

// Snapshot returns a copy of the queue in insertion order. The cleaning
// pipeline iterates a snapshot taken at run start, so chunks added during
// a run are not processed by that run.
func (q *ChunkQueue) Snapshot() []domain.RawChunk {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]domain.RawChunk, len(q.chunks))
	copy(out, q.chunks)
	return out
}

// Get returns the chunk with the given id.
func (q *ChunkQueue) Get(id string) (domain.RawChunk, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	i, ok := q.index[id]
	if !ok {
		return domain.RawChunk{}, false
	}
	return q.chunks[i], true
}

// SetStatus transitions a chunk's state, recording an error message for
// failed transitions and bumping the retry counter.
func (q *ChunkQueue) SetStatus(id string, status domain.ChunkStatus, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, ok := q.index[id]
	if !ok {
		return
	}
	q.chunks[i].Status = status
	q.chunks[i].Error = errMsg
	if status == domain.ChunkFailed {
		q.chunks[i].RetryCount++
	}
}

// Claim atomically transitions a pending chunk to processing. It returns
// false when the chunk is missing or no longer pending, so overlapping
// cleaning runs holding stale snapshots cannot process the same chunk
// twice.
func (q *ChunkQueue) Claim(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, ok := q.index[id]
	if !ok || q.chunks[i].Status != domain.ChunkPending {
		return false
	}
	q.chunks[i].Status = domain.ChunkProcessing
	q.chunks[i].Error = ""
	return true
}

// Requeue flips a failed chunk back to pending. Failed chunks are never
// retried automatically; this is the explicit re-submission path.
func (q *ChunkQueue) Requeue(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i, ok := q.index[id]
	if !ok || q.chunks[i].Status != domain.ChunkFailed {
		return false
	}
	q.chunks[i].Status = domain.ChunkPending
	q.chunks[i].Error = ""
	return true
}

func (q *ChunkQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.chunks)
}

// CountByStatus tallies chunks per lifecycle state.
func (q *ChunkQueue) CountByStatus() map[domain.ChunkStatus]int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	counts := make(map[domain.ChunkStatus]int)
	for _, c := range q.chunks {
		counts[c.Status]++
	}
	return counts
}

// Clear drops all chunks.
func (q *ChunkQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.chunks = nil
	q.index = make(map[string]int)
}
