package exam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exam-pulse/exampulse-lms/internal/grading"
)

type memoryStore struct {
	mu        sync.RWMutex
	exams     map[string]Exam
	attempts  map[string]Attempt
	responses map[string][]Response // attemptID -> responses
	grader    grading.Grader
}

// NewInMemoryStore backs dev mode and tests. Same contract as the SQL store.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:     map[string]Exam{},
		attempts:  map[string]Attempt{},
		responses: map[string][]Response{},
		grader:    grading.NewDefaultGrader(),
	}
}

func (m *memoryStore) PutExam(e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, errors.New("exam not found")
	}
	return stripKeys(e), nil
}

func (m *memoryStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, errors.New("exam not found")
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]ExamSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []ExamSummary{}
	for _, e := range m.exams {
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, ExamSummary{ID: e.ID, Title: e.Title, SectionCount: len(e.Sections), CreatedAt: e.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) NewAttempt(examID, sectionID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[examID]
	if !ok {
		return Attempt{}, errors.New("exam not found")
	}
	if e.SectionByID(sectionID) == nil {
		return Attempt{}, errors.New("section not found")
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		SectionID: sectionID,
		UserID:    userID,
		Status:    "in_progress",
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveResponses(attemptID string, inputs []ResponseInput) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	if a.Status == "submitted" {
		return Attempt{}, errors.New("attempt already submitted")
	}
	existing := m.responses[attemptID]
	for _, in := range inputs {
		replaced := false
		for i := range existing {
			if existing[i].QuestionID == in.QuestionID {
				existing[i].SelectedJSON = in.Selected
				existing[i].TimeSpentSec = in.TimeSpentSec
				existing[i].MarkedForReview = in.MarkedForReview
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, Response{
				ID:              uuid.NewString(),
				AttemptID:       attemptID,
				QuestionID:      in.QuestionID,
				SelectedJSON:    in.Selected,
				TimeSpentSec:    in.TimeSpentSec,
				MarkedForReview: in.MarkedForReview,
			})
		}
	}
	m.responses[attemptID] = existing
	return a, nil
}

func (m *memoryStore) Submit(attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	if a.Status == "submitted" {
		return a, nil
	}
	e := m.exams[a.ExamID]
	sec := e.SectionByID(a.SectionID)
	if sec == nil {
		return Attempt{}, errors.New("section not found")
	}

	qByID := map[string]Question{}
	for _, q := range sec.Questions {
		qByID[q.ID] = q
	}
	score := 0.0
	for i, r := range m.responses[attemptID] {
		q, ok := qByID[r.QuestionID]
		if !ok {
			continue
		}
		res := m.grader.Grade(grading.Q{Type: q.Type, Points: q.Points, Key: q.CorrectJSON}, r.SelectedJSON)
		score += res.Points
		if res.Answered {
			c := res.Correct
			m.responses[attemptID][i].IsCorrect = &c
		}
	}

	now := time.Now().Unix()
	a.Score = score
	a.TotalQuestions = len(sec.Questions)
	a.Status = "submitted"
	a.SubmittedAt = &now
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, errors.New("attempt not found")
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.ExamID != "" && a.ExamID != opts.ExamID {
			continue
		}
		if opts.SectionID != "" && a.SectionID != opts.SectionID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt < out[j].StartedAt })
	return out, nil
}

func stripKeys(e Exam) Exam {
	out := e
	out.Sections = make([]Section, len(e.Sections))
	copy(out.Sections, e.Sections)
	for si := range out.Sections {
		qs := make([]Question, len(out.Sections[si].Questions))
		copy(qs, out.Sections[si].Questions)
		for qi := range qs {
			qs[qi].CorrectJSON = nil
		}
		out.Sections[si].Questions = qs
	}
	return out
}
