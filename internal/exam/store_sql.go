package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/exam-pulse/exampulse-lms/internal/grading"
	"github.com/exam-pulse/exampulse-lms/internal/report"
	syncx "github.com/exam-pulse/exampulse-lms/internal/sync"
)

// SQLStore implements Store and report.Source over database/sql, for both
// the pgx and modernc sqlite drivers.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	grader grading.Grader
	events *syncx.EventRepo // optional
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, grader: grading.NewDefaultGrader()}
}

// WithEventLog records attempt lifecycle events; nil disables it.
func (s *SQLStore) WithEventLog(events *syncx.EventRepo) *SQLStore {
	s.events = events
	return s
}

func (s *SQLStore) PutExam(e Exam) error {
	sj, err := json.Marshal(e.Sections)
	if err != nil {
		return err
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.Exec(`INSERT INTO exams (id,title,created_by,sections_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, sections_json=EXCLUDED.sections_json`,
		e.ID, e.Title, e.CreatedBy, string(sj), e.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(id string) (Exam, error) {
	e, err := s.getExam(context.Background(), id)
	if err != nil {
		return Exam{}, err
	}
	return stripKeys(e), nil
}

func (s *SQLStore) GetExamAdmin(ctx context.Context, id string) (Exam, error) {
	return s.getExam(ctx, id)
}

func (s *SQLStore) getExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,created_by,sections_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var sj string
	if err := row.Scan(&e.ID, &e.Title, &e.CreatedBy, &sj, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, errors.New("exam not found")
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(sj), &e.Sections); err != nil {
		return Exam{}, fmt.Errorf("exam %s: bad sections json: %w", id, err)
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	q := `SELECT id,title,sections_json,created_at FROM exams`
	args := []interface{}{}
	if opts.Q != "" {
		q += ` WHERE LOWER(title) LIKE $1`
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
	}
	q += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d OFFSET %d`, opts.Limit, opts.Offset)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSummary{}
	for rows.Next() {
		var sum ExamSummary
		var sj string
		if err := rows.Scan(&sum.ID, &sum.Title, &sj, &sum.CreatedAt); err != nil {
			return nil, err
		}
		var sections []Section
		if json.Unmarshal([]byte(sj), &sections) == nil {
			sum.SectionCount = len(sections)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(examID, sectionID, userID string) (Attempt, error) {
	e, err := s.getExam(context.Background(), examID)
	if err != nil {
		return Attempt{}, err
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
	_, err = s.db.Exec(`INSERT INTO attempts (id,exam_id,section_id,user_id,status,score,total_questions,started_at)
		VALUES ($1,$2,$3,$4,'in_progress',0,0,$5)`,
		a.ID, a.ExamID, a.SectionID, a.UserID, a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(attemptID string, inputs []ResponseInput) (Attempt, error) {
	a, err := s.GetAttempt(attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == "submitted" {
		return Attempt{}, errors.New("attempt already submitted")
	}
	for _, in := range inputs {
		sel := interface{}(nil)
		if len(in.Selected) > 0 && string(in.Selected) != "null" {
			sel = string(in.Selected)
		}
		// one row per (attempt, question); re-saving replaces the answer
		_, err := s.db.Exec(`INSERT INTO responses (id,attempt_id,question_id,selected_json,time_spent_sec,marked_for_review)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (attempt_id,question_id) DO UPDATE SET
				selected_json=EXCLUDED.selected_json,
				time_spent_sec=EXCLUDED.time_spent_sec,
				marked_for_review=EXCLUDED.marked_for_review,
				is_correct=NULL`,
			uuid.NewString(), attemptID, in.QuestionID, sel, in.TimeSpentSec, in.MarkedForReview)
		if err != nil {
			return Attempt{}, err
		}
	}
	return a, nil
}

func (s *SQLStore) Submit(attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == "submitted" {
		return a, nil
	}
	ctx := context.Background()
	e, err := s.getExam(ctx, a.ExamID)
	if err != nil {
		return Attempt{}, err
	}
	sec := e.SectionByID(a.SectionID)
	if sec == nil {
		return Attempt{}, errors.New("section not found")
	}
	qByID := map[string]Question{}
	for _, q := range sec.Questions {
		qByID[q.ID] = q
	}

	resps, err := s.responsesFor(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	score := 0.0
	for _, r := range resps {
		q, ok := qByID[r.QuestionID]
		if !ok {
			continue
		}
		res := s.grader.Grade(grading.Q{Type: q.Type, Points: q.Points, Key: q.CorrectJSON}, r.SelectedJSON)
		score += res.Points
		if res.Answered {
			if _, err := s.db.ExecContext(ctx, `UPDATE responses SET is_correct=$1 WHERE id=$2`, res.Correct, r.ID); err != nil {
				return Attempt{}, err
			}
		}
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET status='submitted', score=$1, total_questions=$2, submitted_at=$3 WHERE id=$4`,
		score, len(sec.Questions), now, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if s.events != nil {
		data, _ := json.Marshal(map[string]interface{}{"exam_id": a.ExamID, "section_id": a.SectionID, "user_id": a.UserID, "score": score})
		_ = s.events.Append(ctx, syncx.Event{Type: "AttemptSubmitted", Key: attemptID, DataJSON: string(data)})
	}
	return s.GetAttempt(attemptID)
}

func (s *SQLStore) GetAttempt(id string) (Attempt, error) {
	row := s.db.QueryRow(`SELECT id,exam_id,section_id,user_id,status,score,total_questions,started_at,submitted_at FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, errors.New("attempt not found")
		}
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	q := `SELECT id,exam_id,section_id,user_id,status,score,total_questions,started_at,submitted_at FROM attempts`
	var conds []string
	var args []interface{}
	add := func(cond, val string) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if opts.ExamID != "" {
		add("exam_id=$%d", opts.ExamID)
	}
	if opts.SectionID != "" {
		add("section_id=$%d", opts.SectionID)
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY started_at ASC"
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var submitted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.SectionID, &a.UserID, &a.Status, &a.Score, &a.TotalQuestions, &a.StartedAt, &submitted); err != nil {
		return Attempt{}, err
	}
	if submitted.Valid {
		v := submitted.Int64
		a.SubmittedAt = &v
	}
	return a, nil
}

func (s *SQLStore) responsesFor(ctx context.Context, attemptID string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,attempt_id,question_id,selected_json,time_spent_sec,marked_for_review,is_correct FROM responses WHERE attempt_id=$1`,
		attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

func scanResponses(rows *sql.Rows) ([]Response, error) {
	out := []Response{}
	for rows.Next() {
		var r Response
		var sel sql.NullString
		var correct sql.NullBool
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.QuestionID, &sel, &r.TimeSpentSec, &r.MarkedForReview, &correct); err != nil {
			return nil, err
		}
		if sel.Valid {
			r.SelectedJSON = json.RawMessage(sel.String)
		}
		if correct.Valid {
			v := correct.Bool
			r.IsCorrect = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

/* ---------------- report.Source ---------------- */

// FetchQuestions flattens the scoped exams' sections into question records
// with their raw answer keys.
func (s *SQLStore) FetchQuestions(ctx context.Context, scope report.Scope) ([]report.QuestionRecord, error) {
	q := `SELECT id,sections_json FROM exams`
	var args []interface{}
	if scope.ExamID != "" {
		q += ` WHERE id=$1`
		args = append(args, scope.ExamID)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []report.QuestionRecord
	for rows.Next() {
		var examID, sj string
		if err := rows.Scan(&examID, &sj); err != nil {
			return nil, err
		}
		var sections []Section
		if err := json.Unmarshal([]byte(sj), &sections); err != nil {
			continue // malformed exam blob: skip, the engine degrades per question
		}
		for _, sec := range sections {
			for _, qu := range sec.Questions {
				out = append(out, report.QuestionRecord{
					ID:         qu.ID,
					SectionID:  sec.ID,
					Type:       qu.Type,
					CorrectRaw: qu.CorrectJSON,
					Options:    qu.Options,
				})
			}
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) FetchAttempts(ctx context.Context, scope report.Scope) ([]report.AttemptRecord, error) {
	opts := AttemptListOpts{ExamID: scope.ExamID, UserID: scope.UserID}
	attempts, err := s.ListAttempts(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]report.AttemptRecord, 0, len(attempts))
	for _, a := range attempts {
		rec := report.AttemptRecord{
			ID:             a.ID,
			UserID:         a.UserID,
			ExamID:         a.ExamID,
			SectionID:      a.SectionID,
			StartedAt:      time.Unix(a.StartedAt, 0).UTC(),
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
		}
		if a.SubmittedAt != nil {
			t := time.Unix(*a.SubmittedAt, 0).UTC()
			rec.SubmittedAt = &t
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLStore) FetchResponses(ctx context.Context, attemptIDs []string) ([]report.ResponseRecord, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	ph := make([]string, len(attemptIDs))
	args := make([]interface{}, len(attemptIDs))
	for i, id := range attemptIDs {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,attempt_id,question_id,selected_json,time_spent_sec,marked_for_review,is_correct FROM responses WHERE attempt_id IN (`+strings.Join(ph, ",")+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	resps, err := scanResponses(rows)
	if err != nil {
		return nil, err
	}
	out := make([]report.ResponseRecord, 0, len(resps))
	for _, r := range resps {
		out = append(out, report.ResponseRecord{
			ID:              r.ID,
			AttemptID:       r.AttemptID,
			QuestionID:      r.QuestionID,
			SelectedRaw:     r.SelectedJSON,
			TimeSpentSec:    r.TimeSpentSec,
			MarkedForReview: r.MarkedForReview,
			StoredCorrect:   r.IsCorrect,
		})
	}
	return out, nil
}
