package scoring

import (
	"math"
	"sort"

	"brainwaves/internal/domain"
)

// TaxonomyIndex resolves practice ids against a parsed taxonomy. Build one
// per call and pass it in; there is no ambient cache.
type TaxonomyIndex struct {
	entries map[string]taxonomyEntry
}

type taxonomyEntry struct {
	category string
	group    domain.PracticeGroup
}

// NewTaxonomyIndex walks categories and practice groups in taxonomy order.
// The first occurrence of an id wins, which keeps lookups deterministic even
// if a malformed taxonomy repeats an id.
func NewTaxonomyIndex(taxonomy domain.PracticeTaxonomy) *TaxonomyIndex {
	idx := &TaxonomyIndex{entries: make(map[string]taxonomyEntry)}
	for _, category := range taxonomy {
		for _, group := range category.Children {
			if _, ok := idx.entries[group.ID]; ok {
				continue
			}
			idx.entries[group.ID] = taxonomyEntry{category: category.Name, group: group}
		}
	}
	return idx
}

func (idx *TaxonomyIndex) lookup(id string) (taxonomyEntry, bool) {
	entry, ok := idx.entries[id]
	return entry, ok
}

type practiceAccumulator struct {
	score float64
	count int
	order int
}

// Recommend ranks the practices tagged on answered questions against the
// taxonomy. Tags that resolve to nothing are dropped silently; recommendation
// data is best-effort supplementary content, never fatal. Results with a
// score of zero or less are not actionable and are filtered out. The sort is
// stable so ties keep encounter order across repeated calls.
func Recommend(answers []domain.Answer, pt domain.ProfilerType, idx *TaxonomyIndex) []domain.RecommendedPractice {
	recommendations := []domain.RecommendedPractice{}
	if pt.PracticeSource == "" || idx == nil {
		return recommendations
	}

	// Seed an accumulator per tagged question so every tagged practice has
	// an entry even before any answer lands on it. Only the first tag of a
	// multi-tagged question is used.
	accumulators := make(map[string]*practiceAccumulator)
	nextOrder := 0
	for _, q := range pt.Questions {
		tag := q.Practice.First()
		if tag == "" {
			continue
		}
		if _, ok := accumulators[tag]; !ok {
			accumulators[tag] = &practiceAccumulator{order: nextOrder}
			nextOrder++
		}
	}

	for _, answer := range dedupeByQuestion(answers) {
		q, ok := pt.QuestionByText(answer.Question)
		if !ok {
			continue
		}
		tag := q.Practice.First()
		if tag == "" {
			continue
		}
		acc := accumulators[tag]
		if acc == nil {
			continue
		}
		acc.score += float64(answer.Score)
		acc.count++
	}

	ids := make([]string, 0, len(accumulators))
	for id := range accumulators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return accumulators[ids[i]].order < accumulators[ids[j]].order
	})

	for _, id := range ids {
		entry, ok := idx.lookup(id)
		if !ok {
			continue
		}
		score := int(math.Round(accumulators[id].score))
		if score <= 0 {
			continue
		}
		recommendations = append(recommendations, domain.RecommendedPractice{
			ID:         id,
			Name:       entry.group.Name,
			Score:      score,
			Categories: []string{entry.category},
			Strategies: entry.group.Strategies(),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})
	return recommendations
}
