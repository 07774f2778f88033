package report

// Classification is the engine's authoritative verdict for one response.
type Classification int

const (
	Unanswered Classification = iota
	Correct
	Wrong
)

func (c Classification) String() string {
	switch c {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	default:
		return "unanswered"
	}
}

// GradedResponse pairs a response with its decoded selection and verdict.
// Derived only; never written back to the store.
type GradedResponse struct {
	ResponseRecord
	Selected Answer
	Class    Classification
}

// Grade classifies one response. The precedence is fixed:
//
//  1. no selection → Unanswered
//  2. canonical answer known → comparator verdict
//  3. otherwise fall back to the stored submit-time flag (nil = false)
//
// The fallback is a documented degradation path for questions whose key was
// lost or never set, not an alternative to recomputation. Idempotent and
// non-mutating.
func Grade(selected Answer, correct Answer, hasCorrect bool, storedCorrect *bool) Classification {
	if selected.IsNone() {
		return Unanswered
	}
	if hasCorrect {
		if Equals(selected, correct) {
			return Correct
		}
		return Wrong
	}
	if storedCorrect != nil && *storedCorrect {
		return Correct
	}
	return Wrong
}
