package report

import "sort"

// SectionStats groups attempts by section. avgAccuracy is the arithmetic
// mean of per-attempt accuracy percentages: every attempt weighs the same
// regardless of its question count, which can diverge from a pooled
// correct/total ratio when sections differ in size. timeByAttempt carries
// each attempt's response-time sum in seconds.
func SectionStats(facts []AttemptFact, timeByAttempt map[string]int) []SectionStat {
	type tally struct {
		attempts int
		accSum   float64
		timeSum  int
	}
	bySection := map[string]*tally{}
	for _, f := range facts {
		t, ok := bySection[f.SectionID]
		if !ok {
			t = &tally{}
			bySection[f.SectionID] = t
		}
		t.attempts++
		t.accSum += pct(f.CorrectCount, f.TotalQuestions)
		t.timeSum += timeByAttempt[f.ID]
	}

	ids := make([]string, 0, len(bySection))
	for id := range bySection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]SectionStat, 0, len(ids))
	for _, id := range ids {
		t := bySection[id]
		st := SectionStat{
			SectionID: id,
			Attempts:  t.attempts,
			TotalTime: t.timeSum,
		}
		if t.attempts > 0 {
			st.AvgAccuracy = t.accSum / float64(t.attempts)
			st.AvgTime = float64(t.timeSum) / float64(t.attempts)
		}
		out = append(out, st)
	}
	return out
}

// Distribution buckets every submitted session's accuracy into five fixed
// ranges with inclusive upper bounds: [0,20] (20,40] (40,60] (60,80] (80,100].
func Distribution(sessions []Session) [5]int {
	var dist [5]int
	for _, s := range sessions {
		if !s.IsSubmitted {
			continue
		}
		dist[bucket(s.Accuracy)]++
	}
	return dist
}

func bucket(accuracy float64) int {
	switch {
	case accuracy <= 20:
		return 0
	case accuracy <= 40:
		return 1
	case accuracy <= 60:
		return 2
	case accuracy <= 80:
		return 3
	default:
		return 4
	}
}

// Trend groups submitted attempts by the calendar date of their submission
// and reports per-day attempt counts and mean accuracy, ascending by date.
func Trend(facts []AttemptFact) []TrendPoint {
	type tally struct {
		attempts int
		accSum   float64
	}
	byDate := map[string]*tally{}
	for _, f := range facts {
		if f.SubmittedAt == nil {
			continue
		}
		date := f.SubmittedAt.Format("2006-01-02")
		t, ok := byDate[date]
		if !ok {
			t = &tally{}
			byDate[date] = t
		}
		t.attempts++
		t.accSum += pct(f.CorrectCount, f.TotalQuestions)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]TrendPoint, 0, len(dates))
	for _, d := range dates {
		t := byDate[d]
		out = append(out, TrendPoint{
			Date:         d,
			AttemptCount: t.attempts,
			MeanAccuracy: t.accSum / float64(t.attempts),
		})
	}
	return out
}
