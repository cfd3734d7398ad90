package service

import (
	"math/rand"

	"paperforge/internal/domain"
)

// Selector draws balanced sections from a question pool. It is pure with
// respect to the supplied random source, which makes selections
// reproducible under a seeded *rand.Rand.
type Selector struct{}

func NewSelector() Selector {
	return Selector{}
}

// Select iterates the configured sections in order. Each section filters
// the entire pool by kind (sections of the same kind draw from overlapping
// candidates, not a shrinking remainder), shuffles the candidates, and
// takes the first Count. Shortfall is not an error here; the caller
// compares Total() against the configured request.
//
// Stats records {available, requested} per kind. When multiple sections
// share a kind, the last section processed for that kind wins.
func (Selector) Select(pool []domain.Question, cfg domain.PaperConfig, rng *rand.Rand) domain.Selection {
	sel := domain.Selection{
		Stats: make(map[domain.QuestionKind]domain.KindStats, len(cfg.Sections)),
	}

	for _, section := range cfg.Sections {
		candidates := filterByKind(pool, section.Kind)
		sel.Stats[section.Kind] = domain.KindStats{
			Available: len(candidates),
			Requested: section.Count,
		}

		shuffle(candidates, rng)

		take := section.Count
		if take < 0 {
			take = 0
		}
		if take > len(candidates) {
			take = len(candidates)
		}
		sel.Sections = append(sel.Sections, domain.SectionSelection{
			Section:   section,
			Questions: candidates[:take],
		})
	}

	return sel
}

func filterByKind(pool []domain.Question, kind domain.QuestionKind) []domain.Question {
	var out []domain.Question
	for _, q := range pool {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

// shuffle is an in-place Fisher-Yates permutation.
func shuffle(qs []domain.Question, rng *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
