package exam

import (
	"context"
	"encoding/json"
	"testing"
)

func fixtureExam() Exam {
	return Exam{
		ID:    "ex1",
		Title: "Physics Midterm",
		Sections: []Section{
			{
				ID:    "sec1",
				Title: "Mechanics",
				Questions: []Question{
					{ID: "q1", Type: "single", CorrectJSON: json.RawMessage(`"B"`), Points: 1},
					{ID: "q2", Type: "multi", CorrectJSON: json.RawMessage(`["A","C"]`), Points: 2},
					{ID: "q3", Type: "numeric", CorrectJSON: json.RawMessage(`{"answer":"9.8","tol":0.1}`), Points: 1},
				},
			},
		},
	}
}

func TestGetExamStripsAnswerKeys(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.PutExam(fixtureExam()); err != nil {
		t.Fatal(err)
	}
	e, err := s.GetExam("ex1")
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range e.Sections[0].Questions {
		if q.CorrectJSON != nil {
			t.Fatalf("question %s leaked its answer key", q.ID)
		}
	}

	// admin view keeps keys
	full, err := s.GetExamAdmin(context.Background(), "ex1")
	if err != nil {
		t.Fatal(err)
	}
	if full.Sections[0].Questions[0].CorrectJSON == nil {
		t.Fatal("admin view lost the answer key")
	}
}

func TestAttemptLifecycle(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.PutExam(fixtureExam()); err != nil {
		t.Fatal(err)
	}

	a, err := s.NewAttempt("ex1", "sec1", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "in_progress" || a.UserID != "alice" {
		t.Fatalf("unexpected attempt: %+v", a)
	}

	_, err = s.SaveResponses(a.ID, []ResponseInput{
		{QuestionID: "q1", Selected: json.RawMessage(`"B"`), TimeSpentSec: 40},
		{QuestionID: "q2", Selected: json.RawMessage(`["C","A"]`), TimeSpentSec: 60},
		{QuestionID: "q3", Selected: json.RawMessage(`"9.81"`), TimeSpentSec: 30},
	})
	if err != nil {
		t.Fatal(err)
	}

	sub, err := s.Submit(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Status != "submitted" || sub.SubmittedAt == nil {
		t.Fatalf("submit did not finalize: %+v", sub)
	}
	if sub.TotalQuestions != 3 {
		t.Fatalf("total questions = %d, want 3", sub.TotalQuestions)
	}
	if sub.Score != 4 {
		t.Fatalf("score = %v, want 4", sub.Score)
	}
}

func TestSaveResponsesReplacesEarlierAnswer(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.PutExam(fixtureExam()); err != nil {
		t.Fatal(err)
	}
	a, _ := s.NewAttempt("ex1", "sec1", "bob")

	if _, err := s.SaveResponses(a.ID, []ResponseInput{
		{QuestionID: "q1", Selected: json.RawMessage(`"A"`)},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveResponses(a.ID, []ResponseInput{
		{QuestionID: "q1", Selected: json.RawMessage(`"B"`)},
	}); err != nil {
		t.Fatal(err)
	}

	sub, err := s.Submit(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Score != 1 {
		t.Fatalf("score = %v, want 1 (only the latest q1 answer counts)", sub.Score)
	}
}

func TestSubmitTwiceIsIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.PutExam(fixtureExam()); err != nil {
		t.Fatal(err)
	}
	a, _ := s.NewAttempt("ex1", "sec1", "cara")
	first, err := s.Submit(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Submit(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *first.SubmittedAt != *second.SubmittedAt || second.Score != first.Score {
		t.Fatal("second submit changed the attempt")
	}

	if _, err := s.SaveResponses(a.ID, []ResponseInput{{QuestionID: "q1"}}); err == nil {
		t.Fatal("expected save after submit to fail")
	}
}

func TestListAttemptsFilters(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.PutExam(fixtureExam()); err != nil {
		t.Fatal(err)
	}
	a1, _ := s.NewAttempt("ex1", "sec1", "alice")
	_, _ = s.NewAttempt("ex1", "sec1", "bob")
	if _, err := s.Submit(a1.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAttempts(context.Background(), AttemptListOpts{UserID: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a1.ID {
		t.Fatalf("user filter returned %+v", got)
	}

	got, err = s.ListAttempts(context.Background(), AttemptListOpts{Status: "submitted"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UserID != "alice" {
		t.Fatalf("status filter returned %+v", got)
	}
}
