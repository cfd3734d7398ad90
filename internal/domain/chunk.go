package domain

// ChunkStatus is the lifecycle state of a raw chunk.
type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkProcessing ChunkStatus = "processing"
	ChunkCompleted  ChunkStatus = "completed"
	ChunkFailed     ChunkStatus = "failed"
)

// RawChunk is a unit of unprocessed source text awaiting classification.
// Status transitions happen only inside the cleaning pipeline:
// pending -> processing -> completed | failed. Failed chunks are never
// re-queued automatically; Requeue on the chunk queue is an explicit
// user-triggered operation.
type RawChunk struct {
	ID         string
	Text       string
	SourceType SourceType
	SourceName string
	SourceRef  string
	Status     ChunkStatus
	Error      string
	RetryCount int
}
