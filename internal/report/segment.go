package report

import (
	"sort"
	"time"
)

// SessionGap is the idle threshold between attempts: a longer gap starts a
// new sitting.
const SessionGap = 6 * time.Hour

// AttemptFact is a segmenter input: one attempt with its counts already
// settled by the engine (recomputed where responses exist, advisory stored
// values otherwise).
type AttemptFact struct {
	ID             string
	UserID         string
	ExamID         string
	SectionID      string
	StartedAt      time.Time
	SubmittedAt    *time.Time
	CorrectCount   int
	TotalQuestions int
}

func (f AttemptFact) submitted() bool { return f.SubmittedAt != nil }

// accumulator is one user's open sitting while scanning the attempt stream.
type accumulator struct {
	userID   string
	examID   string
	sections map[string]struct{}
	start    time.Time
	last     time.Time
	correct  int
	total    int
	isSubmit bool
}

func openAccumulator(f AttemptFact) *accumulator {
	a := &accumulator{
		userID:   f.UserID,
		examID:   f.ExamID,
		sections: map[string]struct{}{f.SectionID: {}},
		start:    f.StartedAt,
		last:     f.StartedAt,
		correct:  f.CorrectCount,
		total:    f.TotalQuestions,
		isSubmit: f.submitted(),
	}
	return a
}

// boundary reports whether attempt f starts a new sitting. Trigger order is
// fixed: section revisit, then idle gap, then exam switch. Any one suffices.
func (a *accumulator) boundary(f AttemptFact) bool {
	if _, seen := a.sections[f.SectionID]; seen {
		return true
	}
	if f.StartedAt.Sub(a.last) > SessionGap {
		return true
	}
	return f.ExamID != a.examID
}

// fold absorbs attempt f into the open sitting. TotalQuestions accumulates
// across every folded attempt, deliberately not deduplicated by question:
// retaking a section within one sitting counts its questions again.
func (a *accumulator) fold(f AttemptFact) {
	a.sections[f.SectionID] = struct{}{}
	a.last = f.StartedAt
	a.correct += f.CorrectCount
	a.total += f.TotalQuestions
	a.isSubmit = a.isSubmit || f.submitted()
}

func (a *accumulator) emit() Session {
	ids := make([]string, 0, len(a.sections))
	for id := range a.sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Session{
		UserID:         a.userID,
		ExamID:         a.examID,
		SectionIDs:     ids,
		StartTime:      a.start,
		LastTime:       a.last,
		CorrectCount:   a.correct,
		TotalQuestions: a.total,
		IsSubmitted:    a.isSubmit,
		Accuracy:       pct(a.correct, a.total),
	}
}

// Segment folds per-section attempts into logical sittings. The fold is an
// explicit reduction over the time-ordered stream with one open accumulator
// per user; users are independent, so the input could be sharded by user and
// the emitted sessions concatenated, but events WITHIN one user are a strictly
// sequential fold.
//
// Output order: closed sessions in stream order, then the flushed open
// accumulators sorted by user ID.
func Segment(facts []AttemptFact) []Session {
	ordered := make([]AttemptFact, len(facts))
	copy(ordered, facts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})

	open := map[string]*accumulator{}
	var out []Session
	for _, f := range ordered {
		acc, ok := open[f.UserID]
		if !ok {
			open[f.UserID] = openAccumulator(f)
			continue
		}
		if acc.boundary(f) {
			out = append(out, acc.emit())
			open[f.UserID] = openAccumulator(f)
			continue
		}
		acc.fold(f)
	}

	users := make([]string, 0, len(open))
	for u := range open {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		out = append(out, open[u].emit())
	}
	return out
}
