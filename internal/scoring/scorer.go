package scoring

import (
	"errors"
	"fmt"

	"brainwaves/internal/domain"
)

// ErrUnknownQuestion marks an answer whose question the profiler type does
// not define. It indicates a caller or storage bug, so the whole profile is
// rejected rather than the answer silently dropped.
var ErrUnknownQuestion = errors.New("unknown question")

// ScoreDomains sums answer scores per domain for one profile. Every domain
// defined by the profiler type appears in the result, zero-filled when no
// question in it was answered. Scores are raw sums, not averages; the
// downstream charts were built against plain totals.
func ScoreDomains(answers []domain.Answer, pt domain.ProfilerType) (*DomainScores, error) {
	scores := NewDomainScores()
	for _, q := range pt.Questions {
		scores.Add(q.Domain, 0)
	}

	for _, answer := range dedupeByQuestion(answers) {
		q, ok := pt.QuestionByText(answer.Question)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, answer.Question)
		}
		scores.Add(q.Domain, float64(answer.Score))
	}
	return scores, nil
}

// AggregateGroup computes the arithmetic mean per domain over a group's
// profiles. Profiles without answers for a domain still count in the
// denominator. A group with zero profiles yields all domains at 0.
func AggregateGroup(profileAnswers [][]domain.Answer, pt domain.ProfilerType) (*DomainScores, error) {
	totals := NewDomainScores()
	for _, d := range pt.Domains() {
		totals.Add(d, 0)
	}

	for _, answers := range profileAnswers {
		scores, err := ScoreDomains(answers, pt)
		if err != nil {
			return nil, err
		}
		for _, d := range scores.Domains() {
			totals.Add(d, scores.Get(d))
		}
	}

	if n := len(profileAnswers); n > 0 {
		for _, d := range totals.Domains() {
			totals.Set(d, totals.Get(d)/float64(n))
		}
	}
	return totals, nil
}

// dedupeByQuestion keeps the last answer per profile and question;
// resubmissions overwrite rather than accumulate. Answers from different
// profiles never collapse, so concatenated group answer sets keep every
// profile's contribution.
func dedupeByQuestion(answers []domain.Answer) []domain.Answer {
	type key struct {
		profileID string
		question  string
	}
	index := make(map[key]int, len(answers))
	var out []domain.Answer
	for _, a := range answers {
		k := key{profileID: a.ProfileID, question: a.Question}
		if i, ok := index[k]; ok {
			out[i] = a
			continue
		}
		index[k] = len(out)
		out = append(out, a)
	}
	return out
}
