package dto

import "paperforge/internal/domain"

// SectionPayload is one section of a paper configuration.
type SectionPayload struct {
	Type             string  `json:"type"`
	Count            int     `json:"count"`
	MarksPerQuestion int     `json:"marks_per_question"`
	NegativeMarks    float64 `json:"negative_marks"`
}

// PaperConfigPayload is the wire shape of a paper configuration.
type PaperConfigPayload struct {
	SubjectName  string           `json:"subject_name"`
	DurationMins int              `json:"duration_mins"`
	Sections     []SectionPayload `json:"sections"`
}

// ToDomain maps the payload to a domain paper configuration.
func (p PaperConfigPayload) ToDomain() domain.PaperConfig {
	sections := make([]domain.Section, 0, len(p.Sections))
	for _, s := range p.Sections {
		sections = append(sections, domain.Section{
			Kind:             domain.QuestionKind(s.Type),
			Count:            s.Count,
			MarksPerQuestion: s.MarksPerQuestion,
			NegativeMarks:    s.NegativeMarks,
		})
	}
	return domain.PaperConfig{
		SubjectName:  p.SubjectName,
		DurationMins: p.DurationMins,
		Sections:     sections,
	}
}

// BulkStreamsRequest generates one paper per stream in a single archive.
// The sentinel stream "Current Session" draws from the working bank.
type BulkStreamsRequest struct {
	Streams []string           `json:"streams"`
	Config  PaperConfigPayload `json:"config"`
}

// BulkSetsRequest generates several shuffled sets of one stream.
type BulkSetsRequest struct {
	Stream string             `json:"stream"`
	Sets   int                `json:"sets"`
	Config PaperConfigPayload `json:"config"`
}

// BulkErrorsHeader carries per-item failure summaries alongside a partial
// archive download.
const BulkErrorsHeader = "X-Bulk-Errors"
