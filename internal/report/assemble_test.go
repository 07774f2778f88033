package report

import (
	"testing"
	"time"
)

func TestDistribution_Scenario(t *testing.T) {
	mk := func(correct int) Session {
		return Session{CorrectCount: correct, TotalQuestions: 100, IsSubmitted: true, Accuracy: float64(correct)}
	}
	dist := Distribution([]Session{mk(10), mk(35), mk(55), mk(75), mk(95)})
	want := [5]int{1, 1, 1, 1, 1}
	if dist != want {
		t.Fatalf("expected %v, got %v", want, dist)
	}
}

func TestDistribution_InclusiveUpperBounds(t *testing.T) {
	tests := []struct {
		accuracy float64
		bucket   int
	}{
		{0, 0}, {20, 0}, {20.01, 1}, {40, 1}, {60, 2}, {80, 3}, {80.5, 4}, {100, 4},
	}
	for _, tc := range tests {
		if got := bucket(tc.accuracy); got != tc.bucket {
			t.Fatalf("accuracy %v: expected bucket %d, got %d", tc.accuracy, tc.bucket, got)
		}
	}
}

func TestDistribution_SkipsUnsubmitted(t *testing.T) {
	dist := Distribution([]Session{{Accuracy: 90, IsSubmitted: false}})
	if dist != [5]int{} {
		t.Fatalf("expected empty distribution, got %v", dist)
	}
}

func TestSectionStats_MeanOfAttemptAccuracies(t *testing.T) {
	// One perfect two-question attempt and one 0/10 attempt: the mean of
	// percentages (50) diverges from the pooled ratio (2/12 ≈ 16.7).
	facts := []AttemptFact{
		{ID: "a1", SectionID: "s1", CorrectCount: 2, TotalQuestions: 2},
		{ID: "a2", SectionID: "s1", CorrectCount: 0, TotalQuestions: 10},
	}
	stats := SectionStats(facts, map[string]int{"a1": 60, "a2": 240})
	if len(stats) != 1 {
		t.Fatalf("expected 1 section, got %d", len(stats))
	}
	st := stats[0]
	if st.AvgAccuracy != 50 {
		t.Fatalf("expected attempt-weighted mean 50, got %v", st.AvgAccuracy)
	}
	if st.TotalTime != 300 || st.AvgTime != 150 {
		t.Fatalf("expected time 300/150, got %d/%v", st.TotalTime, st.AvgTime)
	}
}

func TestSectionStats_SortedAndZeroGuarded(t *testing.T) {
	facts := []AttemptFact{
		{ID: "a1", SectionID: "s2", CorrectCount: 0, TotalQuestions: 0},
		{ID: "a2", SectionID: "s1", CorrectCount: 1, TotalQuestions: 2},
	}
	stats := SectionStats(facts, map[string]int{})
	if stats[0].SectionID != "s1" || stats[1].SectionID != "s2" {
		t.Fatalf("expected s1 then s2, got %s then %s", stats[0].SectionID, stats[1].SectionID)
	}
	if stats[1].AvgAccuracy != 0 {
		t.Fatalf("expected zero accuracy for empty attempt, got %v", stats[1].AvgAccuracy)
	}
}

func TestTrend_GroupsByDayAscending(t *testing.T) {
	day1 := time.Date(2025, 3, 11, 23, 50, 0, 0, time.UTC)
	day0 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	day0b := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	facts := []AttemptFact{
		{ID: "a1", SubmittedAt: &day1, CorrectCount: 9, TotalQuestions: 10},
		{ID: "a2", SubmittedAt: &day0, CorrectCount: 5, TotalQuestions: 10},
		{ID: "a3", SubmittedAt: &day0b, CorrectCount: 7, TotalQuestions: 10},
		{ID: "a4", SubmittedAt: nil, CorrectCount: 10, TotalQuestions: 10}, // in progress, excluded
	}
	trend := Trend(facts)
	if len(trend) != 2 {
		t.Fatalf("expected 2 points, got %d", len(trend))
	}
	if trend[0].Date != "2025-03-10" || trend[1].Date != "2025-03-11" {
		t.Fatalf("expected ascending dates, got %s then %s", trend[0].Date, trend[1].Date)
	}
	if trend[0].AttemptCount != 2 || trend[0].MeanAccuracy != 60 {
		t.Fatalf("expected 2 attempts at 60%%, got %d at %v", trend[0].AttemptCount, trend[0].MeanAccuracy)
	}
}
