package domain

import "strings"

// QuestionKind classifies how a question is answered.
type QuestionKind string

const (
	KindMCQ QuestionKind = "MCQ" // single-answer multiple choice
	KindMSQ QuestionKind = "MSQ" // multi-answer multiple choice
	KindNAT QuestionKind = "NAT" // numerical answer, no options
)

// ValidKind reports whether k is one of the three supported kinds.
func ValidKind(k QuestionKind) bool {
	switch k {
	case KindMCQ, KindMSQ, KindNAT:
		return true
	}
	return false
}

// SourceType identifies where a question or chunk originated.
type SourceType string

const (
	SourcePDF     SourceType = "PDF"
	SourceWeb     SourceType = "WEB"
	SourceScraper SourceType = "SCRAPER"
	SourceDB      SourceType = "DB"
)

// Options holds the four labeled choices of a choice-type question.
// All four fields are empty for NAT questions.
type Options struct {
	A string
	B string
	C string
	D string
}

// IsEmpty reports whether no option carries any text.
func (o Options) IsEmpty() bool {
	return o.A == "" && o.B == "" && o.C == "" && o.D == ""
}

// Labeled returns the options in render order with their labels.
func (o Options) Labeled() [4]LabeledOption {
	return [4]LabeledOption{
		{Label: "a", Text: o.A},
		{Label: "b", Text: o.B},
		{Label: "c", Text: o.C},
		{Label: "d", Text: o.D},
	}
}

// LabeledOption pairs an option key with its text.
type LabeledOption struct {
	Label string
	Text  string
}

// Question is a classified exam item. Questions are immutable once created;
// the bank only ever appends or clears.
type Question struct {
	ID          string
	Kind        QuestionKind
	Stream      string
	Topic       string
	Prompt      string
	Options     Options
	Answer      string // empty means no verified answer was extracted
	Explanation string
	SourceType  SourceType
	SourceName  string
	SourceRef   string // page number, URL, or archive marker
	ImageURL    string
}

// Validate checks the structural invariants of a question.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return NewInvalidInputError("question prompt is required")
	}
	if !ValidKind(q.Kind) {
		return NewInvalidInputError("unknown question kind: " + string(q.Kind))
	}
	if q.Kind == KindNAT && !q.Options.IsEmpty() {
		return NewInvalidInputError("numerical questions must not carry options")
	}
	return nil
}
