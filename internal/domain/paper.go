package domain

// Section specifies one configured slice of a paper.
type Section struct {
	Kind             QuestionKind
	Count            int
	MarksPerQuestion int
	NegativeMarks    float64
}

// TotalMarks returns the marks contributed by this section.
func (s Section) TotalMarks() int {
	return s.Count * s.MarksPerQuestion
}

// PaperConfig describes an assembled exam. Section order
// defines both selection order and rendering order.
type PaperConfig struct {
	SubjectName  string
	DurationMins int
	Sections     []Section
}

// Validate checks that the configuration can be handed to the selector.
func (c *PaperConfig) Validate() error {
	if c.SubjectName == "" {
		return NewInvalidInputError("subject name is required")
	}
	return c.ValidateSections()
}

// ValidateSections checks the section list alone. Bulk generation stamps
// its own subject names, so it validates sections without requiring one.
func (c *PaperConfig) ValidateSections() error {
	if len(c.Sections) == 0 {
		return NewInvalidInputError("at least one section is required")
	}
	for _, sec := range c.Sections {
		if !ValidKind(sec.Kind) {
			return NewInvalidInputError("unknown section kind: " + string(sec.Kind))
		}
		if sec.Count < 0 {
			return NewInvalidInputError("section count must be non-negative")
		}
	}
	return nil
}

// TotalQuestions is the sum of requested counts across sections.
func (c *PaperConfig) TotalQuestions() int {
	total := 0
	for _, sec := range c.Sections {
		total += sec.Count
	}
	return total
}

// TotalMarks is the sum of marks across sections.
func (c *PaperConfig) TotalMarks() int {
	total := 0
	for _, sec := range c.Sections {
		total += sec.TotalMarks()
	}
	return total
}

// KindStats reports pool availability against a section's request.
type KindStats struct {
	Available int
	Requested int
}

// SectionSelection is the selector output for a single configured section.
type SectionSelection struct {
	Section   Section
	Questions []Question
}

// Selection is the structured result of a selector run: one entry per
// configured section, in configuration order, plus per-kind availability
// stats. When a configuration carries multiple sections of the same kind,
// Stats reflects only the last section processed for that kind.
type Selection struct {
	Sections []SectionSelection
	Stats    map[QuestionKind]KindStats
}

// Flatten concatenates the per-section selections in section order.
func (s *Selection) Flatten() []Question {
	var out []Question
	for _, sec := range s.Sections {
		out = append(out, sec.Questions...)
	}
	return out
}

// Total is the number of selected questions across all sections.
func (s *Selection) Total() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Questions)
	}
	return n
}
