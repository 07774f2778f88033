package report

import "context"

// Source supplies the three read-only record streams. The engine has no say
// in producing them; any fetch retry/backoff policy lives behind this
// interface.
type Source interface {
	FetchQuestions(ctx context.Context, scope Scope) ([]QuestionRecord, error)
	FetchAttempts(ctx context.Context, scope Scope) ([]AttemptRecord, error)
	FetchResponses(ctx context.Context, attemptIDs []string) ([]ResponseRecord, error)
}

// Logger is the anomaly sink for per-record oddities (orphaned responses,
// missing answer keys). Anomalies are logged, never fatal. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Engine computes reports. Stateless: safe for concurrent use, one snapshot
// per BuildReport call.
type Engine struct {
	src Source
	log Logger
}

func NewEngine(src Source, logger Logger) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{src: src, log: logger}
}

// decodedQuestion caches a question's answer key, decoded once at ingestion.
type decodedQuestion struct {
	rec        QuestionRecord
	correct    Answer
	hasCorrect bool
}

// BuildReport runs the full pipeline: grade every response, settle per-attempt
// counts, segment attempts into sittings, aggregate question stats over
// submitted attempts, and assemble the section/distribution/trend views.
// Empty inputs produce a valid zeroed report. One malformed record never
// aborts the rest.
func (e *Engine) BuildReport(ctx context.Context, scope Scope) (Report, error) {
	questions, err := e.src.FetchQuestions(ctx, scope)
	if err != nil {
		return Report{}, err
	}
	attempts, err := e.src.FetchAttempts(ctx, scope)
	if err != nil {
		return Report{}, err
	}
	attemptIDs := make([]string, 0, len(attempts))
	byAttempt := make(map[string]AttemptRecord, len(attempts))
	for _, a := range attempts {
		attemptIDs = append(attemptIDs, a.ID)
		byAttempt[a.ID] = a
	}
	responses, err := e.src.FetchResponses(ctx, attemptIDs)
	if err != nil {
		return Report{}, err
	}

	qIndex := make(map[string]decodedQuestion, len(questions))
	for _, q := range questions {
		dq := decodedQuestion{rec: q}
		if len(q.CorrectRaw) > 0 {
			dq.correct = DecodeAnswer(q.CorrectRaw)
			dq.hasCorrect = !dq.correct.IsNone()
		}
		if !dq.hasCorrect {
			e.log.Printf("report: question %s has no canonical answer, stored flags will be trusted", q.ID)
		}
		qIndex[q.ID] = dq
	}

	// Grade everything up front; tally recomputed counts per attempt.
	graded := make([]GradedResponse, 0, len(responses))
	correctByAttempt := map[string]int{}
	totalByAttempt := map[string]int{}
	timeByAttempt := map[string]int{}
	for _, r := range responses {
		if _, ok := byAttempt[r.AttemptID]; !ok {
			e.log.Printf("report: response %s references unknown attempt %s, skipped", r.ID, r.AttemptID)
			continue
		}
		sel := DecodeAnswer(r.SelectedRaw)
		dq, known := qIndex[r.QuestionID]
		if !known {
			e.log.Printf("report: response %s references unknown question %s, grading from stored flag", r.ID, r.QuestionID)
		}
		g := GradedResponse{
			ResponseRecord: r,
			Selected:       sel,
			Class:          Grade(sel, dq.correct, known && dq.hasCorrect, r.StoredCorrect),
		}
		graded = append(graded, g)
		totalByAttempt[r.AttemptID]++
		timeByAttempt[r.AttemptID] += r.TimeSpentSec
		if g.Class == Correct {
			correctByAttempt[r.AttemptID]++
		}
	}

	// Per-attempt facts: recomputed counts where responses exist, the stored
	// advisory values otherwise.
	facts := make([]AttemptFact, 0, len(attempts))
	for _, a := range attempts {
		f := AttemptFact{
			ID:          a.ID,
			UserID:      a.UserID,
			ExamID:      a.ExamID,
			SectionID:   a.SectionID,
			StartedAt:   a.StartedAt,
			SubmittedAt: a.SubmittedAt,
		}
		if n, ok := totalByAttempt[a.ID]; ok && n > 0 {
			f.TotalQuestions = n
			f.CorrectCount = correctByAttempt[a.ID]
		} else {
			f.TotalQuestions = a.TotalQuestions
			f.CorrectCount = int(a.Score)
		}
		facts = append(facts, f)
	}

	sessions := Segment(facts)

	agg := NewAggregator()
	for _, g := range graded {
		a := byAttempt[g.AttemptID]
		if a.SubmittedAt == nil {
			continue
		}
		agg.Add(g)
	}

	return Report{
		Sessions:      sessions,
		QuestionStats: agg.Finalize(),
		SectionStats:  SectionStats(facts, timeByAttempt),
		Distribution:  Distribution(sessions),
		Trend:         Trend(facts),
	}, nil
}
