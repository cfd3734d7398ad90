package models

import (
	"time"

	"paperforge/internal/domain"
)

// Question is the persistence model for a bank question.
type Question struct {
	QID         string    `db:"qid"`
	Kind        string    `db:"kind"`
	Stream      string    `db:"stream"`
	Topic       string    `db:"topic"`
	Prompt      string    `db:"prompt"`
	OptionA     string    `db:"option_a"`
	OptionB     string    `db:"option_b"`
	OptionC     string    `db:"option_c"`
	OptionD     string    `db:"option_d"`
	Answer      string    `db:"answer"`
	Explanation string    `db:"explanation"`
	SourceType  string    `db:"source_type"`
	SourceName  string    `db:"source_name"`
	SourceRef   string    `db:"source_ref"`
	ImageURL    string    `db:"image_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// FromDomain maps a domain question onto the persistence model.
func FromDomain(q domain.Question) Question {
	return Question{
		QID:         q.ID,
		Kind:        string(q.Kind),
		Stream:      q.Stream,
		Topic:       q.Topic,
		Prompt:      q.Prompt,
		OptionA:     q.Options.A,
		OptionB:     q.Options.B,
		OptionC:     q.Options.C,
		OptionD:     q.Options.D,
		Answer:      q.Answer,
		Explanation: q.Explanation,
		SourceType:  string(q.SourceType),
		SourceName:  q.SourceName,
		SourceRef:   q.SourceRef,
		ImageURL:    q.ImageURL,
	}
}

// ToDomain maps the persistence model back to the domain question.
func (m Question) ToDomain() domain.Question {
	return domain.Question{
		ID:     m.QID,
		Kind:   domain.QuestionKind(m.Kind),
		Stream: m.Stream,
		Topic:  m.Topic,
		Prompt: m.Prompt,
		Options: domain.Options{
			A: m.OptionA,
			B: m.OptionB,
			C: m.OptionC,
			D: m.OptionD,
		},
		Answer:      m.Answer,
		Explanation: m.Explanation,
		SourceType:  domain.SourceType(m.SourceType),
		SourceName:  m.SourceName,
		SourceRef:   m.SourceRef,
		ImageURL:    m.ImageURL,
	}
}
