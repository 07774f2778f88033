package exam

import "encoding/json"

// Question types: single, multi, numeric, text.
type Question struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt,omitempty"`
	Options []string `json:"options,omitempty"`
	// CorrectJSON is the answer key in whichever shape the authoring tool
	// produced: scalar, list, or {"answer":...} object. Stripped when an exam
	// is served to students.
	CorrectJSON json.RawMessage `json:"correct_answer,omitempty"`
	Points      float64         `json:"points"`
	AssetKey    string          `json:"asset_key,omitempty"` // PDF snip / image in blob storage
}

type Section struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`
}

type Exam struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by,omitempty"`
	Sections  []Section `json:"sections"`
	CreatedAt int64     `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	SectionCount int    `json:"section_count"`
	CreatedAt    int64  `json:"created_at"`
}

// Attempt is one timed run at a single section. Score and TotalQuestions are
// written at submit time; reporting treats them as advisory and recomputes.
type Attempt struct {
	ID             string  `json:"id"`
	ExamID         string  `json:"exam_id"`
	SectionID      string  `json:"section_id"`
	UserID         string  `json:"user_id"`
	Status         string  `json:"status"` // in_progress|submitted
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	StartedAt      int64   `json:"started_at"`
	SubmittedAt    *int64  `json:"submitted_at,omitempty"`
}

// Response is one question's answer within an attempt. SelectedJSON shares
// the key's polymorphic shape; nil means unanswered. IsCorrect is the
// submit-time verdict and may go stale if the key is edited afterwards.
type Response struct {
	ID              string          `json:"id"`
	AttemptID       string          `json:"attempt_id"`
	QuestionID      string          `json:"question_id"`
	SelectedJSON    json.RawMessage `json:"selected_answer,omitempty"`
	TimeSpentSec    int             `json:"time_spent_sec"`
	MarkedForReview bool            `json:"marked_for_review"`
	IsCorrect       *bool           `json:"is_correct,omitempty"`
}

// ResponseInput is the save-responses payload for one question.
type ResponseInput struct {
	QuestionID      string          `json:"question_id"`
	Selected        json.RawMessage `json:"selected_answer,omitempty"`
	TimeSpentSec    int             `json:"time_spent_sec"`
	MarkedForReview bool            `json:"marked_for_review"`
}

// SectionByID finds a section inside the exam; nil when absent.
func (e *Exam) SectionByID(id string) *Section {
	for i := range e.Sections {
		if e.Sections[i].ID == id {
			return &e.Sections[i]
		}
	}
	return nil
}
