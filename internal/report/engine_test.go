package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/exam-pulse/exampulse-lms/internal/report"
)

/* ---------------- In-memory fake satisfying report.Source ---------------- */

type fakeSource struct {
	questions []report.QuestionRecord
	attempts  []report.AttemptRecord
	responses []report.ResponseRecord
	fetchErr  error
}

func (s *fakeSource) FetchQuestions(_ context.Context, _ report.Scope) ([]report.QuestionRecord, error) {
	return s.questions, s.fetchErr
}

func (s *fakeSource) FetchAttempts(_ context.Context, _ report.Scope) ([]report.AttemptRecord, error) {
	return s.attempts, s.fetchErr
}

// Over-returns on purpose: a sloppy store may hand back rows for attempts
// outside the requested set, and the engine must ignore those.
func (s *fakeSource) FetchResponses(_ context.Context, _ []string) ([]report.ResponseRecord, error) {
	return s.responses, s.fetchErr
}

func seedSource(t *testing.T) *fakeSource {
	t.Helper()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := start.Add(40 * time.Minute)
	return &fakeSource{
		questions: []report.QuestionRecord{
			{ID: "q1", SectionID: "s1", Type: "single", CorrectRaw: json.RawMessage(`"A"`)},
			{ID: "q2", SectionID: "s1", Type: "multi", CorrectRaw: json.RawMessage(`["A","B"]`)},
		},
		attempts: []report.AttemptRecord{
			{ID: "at1", UserID: "u1", ExamID: "e1", SectionID: "s1", StartedAt: start, SubmittedAt: &submitted, Score: 99, TotalQuestions: 99},
			{ID: "at2", UserID: "u2", ExamID: "e1", SectionID: "s1", StartedAt: start.Add(time.Hour)}, // never submitted
		},
		responses: []report.ResponseRecord{
			{ID: "r1", AttemptID: "at1", QuestionID: "q1", SelectedRaw: json.RawMessage(`" a "`), TimeSpentSec: 20},
			{ID: "r2", AttemptID: "at1", QuestionID: "q2", SelectedRaw: json.RawMessage(`["B","A"]`), TimeSpentSec: 40, MarkedForReview: true},
			{ID: "r3", AttemptID: "at2", QuestionID: "q1", SelectedRaw: json.RawMessage(`"B"`), TimeSpentSec: 5},
		},
	}
}

func build(t *testing.T, src *fakeSource) report.Report {
	t.Helper()
	rep, err := report.NewEngine(src, nil).BuildReport(context.Background(), report.Scope{ExamID: "e1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rep
}

/* ------------------------------- Tests ------------------------------- */

func TestBuildReport_RecomputesAdvisoryCounts(t *testing.T) {
	rep := build(t, seedSource(t))
	if len(rep.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(rep.Sessions))
	}
	var u1 report.Session
	for _, s := range rep.Sessions {
		if s.UserID == "u1" {
			u1 = s
		}
	}
	// stored score/total were 99/99 garbage; both responses are correct
	if u1.CorrectCount != 2 || u1.TotalQuestions != 2 {
		t.Fatalf("expected recomputed 2/2, got %d/%d", u1.CorrectCount, u1.TotalQuestions)
	}
	if u1.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", u1.Accuracy)
	}
}

func TestBuildReport_SubmittedFilter(t *testing.T) {
	rep := build(t, seedSource(t))

	// u2 never submitted: its responses must not reach question stats...
	for _, st := range rep.QuestionStats {
		if st.QuestionID == "q1" && st.WrongCount != 0 {
			t.Fatalf("unsubmitted attempt leaked into question stats: %+v", st)
		}
	}
	// ...but its session still shows up, unsubmitted.
	var u2 report.Session
	for _, s := range rep.Sessions {
		if s.UserID == "u2" {
			u2 = s
		}
	}
	if u2.UserID == "" || u2.IsSubmitted {
		t.Fatalf("expected unsubmitted session for u2, got %+v", u2)
	}
}

func TestBuildReport_QuestionStats(t *testing.T) {
	rep := build(t, seedSource(t))
	if len(rep.QuestionStats) != 2 {
		t.Fatalf("expected 2 question stats, got %d", len(rep.QuestionStats))
	}
	q2 := rep.QuestionStats[1]
	if q2.QuestionID != "q2" {
		t.Fatalf("expected q2 second, got %s", q2.QuestionID)
	}
	if q2.CorrectCount != 1 || q2.ReviewedCount != 1 {
		t.Fatalf("expected q2 correct+reviewed, got %+v", q2)
	}
}

func TestBuildReport_TrendAndDistribution(t *testing.T) {
	rep := build(t, seedSource(t))
	if len(rep.Trend) != 1 || rep.Trend[0].Date != "2025-03-10" {
		t.Fatalf("expected one trend point on 2025-03-10, got %+v", rep.Trend)
	}
	if rep.Distribution != [5]int{0, 0, 0, 0, 1} {
		t.Fatalf("expected one session in the top bucket, got %v", rep.Distribution)
	}
}

func TestBuildReport_OrphanResponseSkipped(t *testing.T) {
	src := seedSource(t)
	src.responses = append(src.responses, report.ResponseRecord{
		ID: "r-orphan", AttemptID: "ghost", QuestionID: "q1", SelectedRaw: json.RawMessage(`"A"`),
	})
	rep := build(t, src)
	for _, st := range rep.QuestionStats {
		if st.QuestionID == "q1" && st.TotalAttempts != 1 {
			t.Fatalf("orphan response was counted: %+v", st)
		}
	}
}

func TestBuildReport_MissingKeyFallsBackToStoredFlag(t *testing.T) {
	src := seedSource(t)
	src.questions[0].CorrectRaw = nil // q1 loses its key
	yes := true
	src.responses[0].StoredCorrect = &yes
	src.responses[0].SelectedRaw = json.RawMessage(`"whatever"`)
	rep := build(t, src)
	q1 := rep.QuestionStats[0]
	if q1.QuestionID != "q1" || q1.CorrectCount != 1 {
		t.Fatalf("expected stored-flag fallback to count correct, got %+v", q1)
	}
}

func TestBuildReport_EmptyInputs(t *testing.T) {
	rep := build(t, &fakeSource{})
	if len(rep.Sessions) != 0 || len(rep.QuestionStats) != 0 || len(rep.SectionStats) != 0 || len(rep.Trend) != 0 {
		t.Fatalf("expected zeroed report, got %+v", rep)
	}
	if rep.Distribution != [5]int{} {
		t.Fatalf("expected empty distribution, got %v", rep.Distribution)
	}
}

func TestBuildReport_FetchErrorPropagates(t *testing.T) {
	src := seedSource(t)
	src.fetchErr = errors.New("store down")
	if _, err := report.NewEngine(src, nil).BuildReport(context.Background(), report.Scope{}); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
