package report

import "sort"

// Aggregator accumulates per-question counters over graded responses.
// Callers must feed it only responses belonging to submitted attempts;
// in-progress attempts would skew accuracy with partial work.
type Aggregator struct {
	tallies map[string]*questionTally
}

type questionTally struct {
	total      int
	correct    int
	wrong      int
	unanswered int
	reviewed   int
	timeSum    int
	wrongFreq  map[string]int
}

func NewAggregator() *Aggregator {
	return &Aggregator{tallies: map[string]*questionTally{}}
}

// Add folds one graded response into its question's tally. "Unanswered" here
// is strictly "no selection", matching the grader's classification; it is
// independent of any correctness computation.
func (ag *Aggregator) Add(g GradedResponse) {
	t, ok := ag.tallies[g.QuestionID]
	if !ok {
		t = &questionTally{wrongFreq: map[string]int{}}
		ag.tallies[g.QuestionID] = t
	}
	t.total++
	t.timeSum += g.TimeSpentSec
	if g.MarkedForReview {
		t.reviewed++
	}
	switch g.Class {
	case Correct:
		t.correct++
	case Wrong:
		t.wrong++
		t.wrongFreq[g.Selected.Key()]++
	default:
		t.unanswered++
	}
}

// Finalize computes the derived ratios and returns stats sorted by question
// ID. Ratios guard their denominators; an empty tally yields zeros.
func (ag *Aggregator) Finalize() []QuestionStat {
	ids := make([]string, 0, len(ag.tallies))
	for id := range ag.tallies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]QuestionStat, 0, len(ids))
	for _, id := range ids {
		t := ag.tallies[id]
		st := QuestionStat{
			QuestionID:      id,
			TotalAttempts:   t.total,
			CorrectCount:    t.correct,
			WrongCount:      t.wrong,
			UnansweredCount: t.unanswered,
			ReviewedCount:   t.reviewed,
			Accuracy:        pct(t.correct, t.total),
			MostCommonWrong: mostCommon(t.wrongFreq),
		}
		if t.total > 0 {
			st.AvgTimeSec = float64(t.timeSum) / float64(t.total)
		}
		out = append(out, st)
	}
	return out
}

// mostCommon picks the highest-count entry; ties break to the
// lexicographically smallest answer string so the result never depends on
// map iteration order.
func mostCommon(freq map[string]int) string {
	best := ""
	bestN := 0
	for ans, n := range freq {
		if n > bestN || (n == bestN && bestN > 0 && ans < best) {
			best, bestN = ans, n
		}
	}
	return best
}
