// Package report turns raw attempt/response/question records into the
// analytics report backing the dashboards: authoritative regrading of every
// response, reconstruction of logical sittings out of per-section attempts,
// and per-question / per-section / per-exam aggregates.
//
// The whole package is a pure batch computation over a snapshot fetched once
// per request. Nothing here performs I/O or keeps state between calls.
package report

import (
	"encoding/json"
	"time"
)

// Scope narrows a report to one exam, one user, or both. Empty fields mean
// "all".
type Scope struct {
	ExamID string
	UserID string
}

// QuestionRecord is the engine's read-only view of a question. CorrectRaw is
// the polymorphic answer key as stored: a scalar, a list, or an object
// carrying an "answer"/"value" field. A nil CorrectRaw means no canonical
// answer is available for this question.
type QuestionRecord struct {
	ID         string
	SectionID  string
	Type       string
	CorrectRaw json.RawMessage
	Options    []string
}

// AttemptRecord is one timed attempt at a single exam section. Score and
// TotalQuestions are advisory; the engine recomputes both from responses
// whenever responses exist.
type AttemptRecord struct {
	ID             string
	UserID         string
	ExamID         string
	SectionID      string
	StartedAt      time.Time
	SubmittedAt    *time.Time // nil = in progress / abandoned
	Score          float64
	TotalQuestions int
}

// ResponseRecord is one question's submitted answer within an attempt.
// SelectedRaw shares CorrectRaw's polymorphic shape; nil means unanswered.
// StoredCorrect is a possibly-stale flag precomputed at submit time; the
// engine only consults it when no canonical answer exists.
type ResponseRecord struct {
	ID              string
	AttemptID       string
	QuestionID      string
	SelectedRaw     json.RawMessage
	TimeSpentSec    int
	MarkedForReview bool
	StoredCorrect   *bool
}

// Session is one logical sitting reconstructed from one or more attempts by
// the same user. Ephemeral: recomputed every report, never stored.
type Session struct {
	UserID         string    `json:"user_id"`
	ExamID         string    `json:"exam_id"`
	SectionIDs     []string  `json:"section_ids"` // sorted
	StartTime      time.Time `json:"start_time"`
	LastTime       time.Time `json:"last_time"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	IsSubmitted    bool      `json:"is_submitted"`
	Accuracy       float64   `json:"accuracy"` // percent, 0 when TotalQuestions is 0
}

// QuestionStat aggregates graded responses of submitted attempts for one
// question.
type QuestionStat struct {
	QuestionID      string  `json:"question_id"`
	TotalAttempts   int     `json:"total_attempts"`
	CorrectCount    int     `json:"correct_count"`
	WrongCount      int     `json:"wrong_count"`
	UnansweredCount int     `json:"unanswered_count"`
	ReviewedCount   int     `json:"reviewed_count"`
	Accuracy        float64 `json:"accuracy"`     // percent
	AvgTimeSec      float64 `json:"avg_time_sec"`
	MostCommonWrong string  `json:"most_common_wrong,omitempty"`
}

// SectionStat reports attempt-weighted accuracy for one section: the mean of
// per-attempt accuracy percentages, NOT a pooled correct/total ratio. With
// unequal question counts the two diverge; every attempt weighs the same here.
type SectionStat struct {
	SectionID   string  `json:"section_id"`
	Attempts    int     `json:"attempts"`
	AvgAccuracy float64 `json:"avg_accuracy"` // percent
	TotalTime   int     `json:"total_time_sec"`
	AvgTime     float64 `json:"avg_time_sec"`
}

// TrendPoint is one calendar day of submitted attempts.
type TrendPoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	AttemptCount int     `json:"attempt_count"`
	MeanAccuracy float64 `json:"mean_accuracy"` // percent
}

// Report is the engine's single output value.
type Report struct {
	Sessions      []Session      `json:"sessions"`
	QuestionStats []QuestionStat `json:"question_stats"`
	SectionStats  []SectionStat  `json:"section_stats"`
	Distribution  [5]int         `json:"distribution"` // [0,20] (20,40] (40,60] (60,80] (80,100]
	Trend         []TrendPoint   `json:"trend"`
}

// pct is the shared ratio guard: 0 whenever the denominator is 0.
func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
