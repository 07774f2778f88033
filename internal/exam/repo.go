package exam

import "context"

type ListOpts struct {
	Q          string
	Limit      int
	Offset     int
	ViewerID   string
	ViewerRole string // "student" | "teacher" | "admin"
}

type AttemptListOpts struct {
	ExamID    string
	SectionID string
	UserID    string
	Status    string // optional: in_progress|submitted
	Limit     int
	Offset    int
}

type Store interface {
	PutExam(e Exam) error
	GetExam(id string) (Exam, error)                           // student-safe (no answer keys)
	GetExamAdmin(ctx context.Context, id string) (Exam, error) // full exam, for teachers/grading
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	NewAttempt(examID, sectionID, userID string) (Attempt, error)
	SaveResponses(attemptID string, inputs []ResponseInput) (Attempt, error)
	Submit(attemptID string) (Attempt, error)
	GetAttempt(id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}
