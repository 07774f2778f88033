package report

import (
	"encoding/json"
	"testing"
)

func graded(question, selected string, class Classification, opts ...func(*GradedResponse)) GradedResponse {
	g := GradedResponse{
		ResponseRecord: ResponseRecord{
			QuestionID:   question,
			SelectedRaw:  json.RawMessage(selected),
			TimeSpentSec: 30,
		},
		Selected: DecodeAnswer(json.RawMessage(selected)),
		Class:    class,
	}
	for _, o := range opts {
		o(&g)
	}
	return g
}

func reviewed(g *GradedResponse)    { g.MarkedForReview = true }
func spent(sec int) func(*GradedResponse) {
	return func(g *GradedResponse) { g.TimeSpentSec = sec }
}

func TestAggregator_Scenario(t *testing.T) {
	ag := NewAggregator()
	ag.Add(graded("q1", `"A"`, Correct))
	ag.Add(graded("q1", `"B"`, Wrong))
	ag.Add(graded("q1", ``, Unanswered))

	stats := ag.Finalize()
	if len(stats) != 1 {
		t.Fatalf("expected 1 stat, got %d", len(stats))
	}
	st := stats[0]
	if st.CorrectCount != 1 || st.WrongCount != 1 || st.UnansweredCount != 1 {
		t.Fatalf("expected 1/1/1, got %d/%d/%d", st.CorrectCount, st.WrongCount, st.UnansweredCount)
	}
	if st.TotalAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", st.TotalAttempts)
	}
	if st.Accuracy < 33.3 || st.Accuracy > 33.4 {
		t.Fatalf("expected accuracy ~33.33, got %v", st.Accuracy)
	}
	if st.MostCommonWrong != "b" {
		t.Fatalf("expected most common wrong %q, got %q", "b", st.MostCommonWrong)
	}
}

func TestAggregator_EmptyTallyHasZeroRatios(t *testing.T) {
	stats := NewAggregator().Finalize()
	if len(stats) != 0 {
		t.Fatalf("expected no stats, got %d", len(stats))
	}
	// zero-denominator guard on a real but unanswered-only tally
	ag := NewAggregator()
	ag.Add(graded("q1", ``, Unanswered, spent(0)))
	st := ag.Finalize()[0]
	if st.Accuracy != 0 || st.AvgTimeSec != 0 {
		t.Fatalf("expected zero ratios, got acc=%v avg=%v", st.Accuracy, st.AvgTimeSec)
	}
}

func TestAggregator_ReviewAndTiming(t *testing.T) {
	ag := NewAggregator()
	ag.Add(graded("q1", `"A"`, Correct, reviewed, spent(10)))
	ag.Add(graded("q1", `"A"`, Correct, spent(50)))
	st := ag.Finalize()[0]
	if st.ReviewedCount != 1 {
		t.Fatalf("expected 1 reviewed, got %d", st.ReviewedCount)
	}
	if st.AvgTimeSec != 30 {
		t.Fatalf("expected avg time 30, got %v", st.AvgTimeSec)
	}
}

func TestAggregator_WrongAnswerTieBreaksLexicographically(t *testing.T) {
	ag := NewAggregator()
	ag.Add(graded("q1", `"Delta"`, Wrong))
	ag.Add(graded("q1", `"Alpha"`, Wrong))
	st := ag.Finalize()[0]
	if st.MostCommonWrong != "alpha" {
		t.Fatalf("expected lexicographic tie-break to alpha, got %q", st.MostCommonWrong)
	}
}

func TestAggregator_MultiSelectionKey(t *testing.T) {
	ag := NewAggregator()
	ag.Add(graded("q1", `["C","B"]`, Wrong))
	ag.Add(graded("q1", `["C","B"]`, Wrong))
	ag.Add(graded("q1", `["D"]`, Wrong))
	st := ag.Finalize()[0]
	if st.MostCommonWrong != "c,b" {
		t.Fatalf("expected joined multi key c,b, got %q", st.MostCommonWrong)
	}
}

func TestAggregator_FinalizeSortedByQuestion(t *testing.T) {
	ag := NewAggregator()
	ag.Add(graded("q2", `"A"`, Correct))
	ag.Add(graded("q1", `"A"`, Correct))
	stats := ag.Finalize()
	if stats[0].QuestionID != "q1" || stats[1].QuestionID != "q2" {
		t.Fatalf("expected q1 then q2, got %s then %s", stats[0].QuestionID, stats[1].QuestionID)
	}
}
