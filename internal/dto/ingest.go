package dto

// NewChunk is a manually submitted piece of raw source text.
type NewChunk struct {
	Text       string `json:"text"`
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`
	SourceRef  string `json:"page_or_url"`
}

// AddChunksRequest submits raw text chunks straight into the queue.
type AddChunksRequest struct {
	Chunks []NewChunk `json:"chunks"`
}

// ScrapeRequest asks the scraper collector to fetch a batch of URLs.
type ScrapeRequest struct {
	URLs              []string `json:"urls"`
	RateLimitMs       int      `json:"rate_limit_ms"`
	ContainerSelector string   `json:"container_selector"`
	QuestionSelector  string   `json:"question_selector"`
	OptionSelector    string   `json:"option_selector"`
}

// ChunkResponse describes one queued chunk without its full text.
type ChunkResponse struct {
	ID         string `json:"id"`
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`
	SourceRef  string `json:"page_or_url"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	TextLength int    `json:"text_length"`
}

// ChunksAddedResponse reports how many chunks an ingestion call produced.
type ChunksAddedResponse struct {
	Added  int             `json:"added"`
	Chunks []ChunkResponse `json:"chunks"`
}

// QueueResponse is the full queue snapshot plus per-status counts.
type QueueResponse struct {
	Total  int             `json:"total"`
	Counts map[string]int  `json:"counts"`
	Chunks []ChunkResponse `json:"chunks"`
}

// CleaningRunResponse reports the outcome of one cleaning run.
type CleaningRunResponse struct {
	TotalChunks     int `json:"total_chunks"`
	ProcessedChunks int `json:"processed_chunks"`
	FailedChunks    int `json:"failed_chunks"`
	QuestionsFound  int `json:"questions_found"`
	BankSize        int `json:"bank_size"`
}

// TopicGenRequest starts AI topic generation for a stream. Topics may be
// an explicit syllabus; when empty the planner derives them.
type TopicGenRequest struct {
	Stream string   `json:"stream"`
	Topics []string `json:"topics,omitempty"`
}

// TopicGenResponse summarizes a completed generation run.
type TopicGenResponse struct {
	Stream         string   `json:"stream"`
	QuestionsAdded int      `json:"questions_added"`
	Progress       []string `json:"progress"`
}
