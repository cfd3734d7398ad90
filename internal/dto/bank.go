package dto

import "paperforge/internal/domain"

// OptionsPayload is the four labeled answer options.
type OptionsPayload struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// QuestionPayload is the wire shape of a question, used both for direct
// imports and for bank listings.
type QuestionPayload struct {
	QID         string         `json:"qid"`
	Type        string         `json:"type"`
	Stream      string         `json:"stream,omitempty"`
	Topic       string         `json:"topic,omitempty"`
	Question    string         `json:"question"`
	Options     OptionsPayload `json:"options"`
	Answer      string         `json:"answer,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
	SourceType  string         `json:"source_type,omitempty"`
	SourceName  string         `json:"source_name,omitempty"`
	SourceRef   string         `json:"page_or_url,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
}

// ToDomain maps the payload to a domain question.
func (p QuestionPayload) ToDomain() domain.Question {
	return domain.Question{
		ID:     p.QID,
		Kind:   domain.QuestionKind(p.Type),
		Stream: p.Stream,
		Topic:  p.Topic,
		Prompt: p.Question,
		Options: domain.Options{
			A: p.Options.A,
			B: p.Options.B,
			C: p.Options.C,
			D: p.Options.D,
		},
		Answer:      p.Answer,
		Explanation: p.Explanation,
		SourceType:  domain.SourceType(p.SourceType),
		SourceName:  p.SourceName,
		SourceRef:   p.SourceRef,
		ImageURL:    p.ImageURL,
	}
}

// QuestionPayloadFromDomain maps a domain question to its wire shape.
func QuestionPayloadFromDomain(q domain.Question) QuestionPayload {
	return QuestionPayload{
		QID:      q.ID,
		Type:     string(q.Kind),
		Stream:   q.Stream,
		Topic:    q.Topic,
		Question: q.Prompt,
		Options: OptionsPayload{
			A: q.Options.A,
			B: q.Options.B,
			C: q.Options.C,
			D: q.Options.D,
		},
		Answer:      q.Answer,
		Explanation: q.Explanation,
		SourceType:  string(q.SourceType),
		SourceName:  q.SourceName,
		SourceRef:   q.SourceRef,
		ImageURL:    q.ImageURL,
	}
}

// AddQuestionsRequest imports fully formed questions into the bank.
type AddQuestionsRequest struct {
	Questions []QuestionPayload `json:"questions"`
}

// BankResponse is the current working bank.
type BankResponse struct {
	Size      int               `json:"size"`
	Unsaved   int               `json:"unsaved"`
	Questions []QuestionPayload `json:"questions"`
}

// LoadStreamRequest loads a persisted stream into the working bank.
// Confirm must be set when the load would replace a non-empty bank.
type LoadStreamRequest struct {
	Stream  string `json:"stream"`
	Confirm bool   `json:"confirm"`
}

// LoadStreamResponse reports how many questions a stream load brought in.
type LoadStreamResponse struct {
	Stream string `json:"stream"`
	Loaded int    `json:"loaded"`
}

// SaveResponse reports a manual bank persist.
type SaveResponse struct {
	Saved int `json:"saved"`
}

// StreamsResponse lists the persisted stream names.
type StreamsResponse struct {
	Streams []string `json:"streams"`
}

// MessageResponse is a generic acknowledgment.
type MessageResponse struct {
	Message string `json:"message"`
}
