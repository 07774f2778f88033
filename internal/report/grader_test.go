package report

import (
	"encoding/json"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestGrade(t *testing.T) {
	correct := DecodeAnswer(json.RawMessage(`"A"`))
	tests := []struct {
		name       string
		selected   string
		hasCorrect bool
		stored     *bool
		want       Classification
	}{
		{"nil selection is unanswered", "", true, boolPtr(true), Unanswered},
		{"match", `"a"`, true, nil, Correct},
		{"mismatch", `"B"`, true, nil, Wrong},
		{"fallback stored true", `"B"`, false, boolPtr(true), Correct},
		{"fallback stored false", `"B"`, false, boolPtr(false), Wrong},
		{"fallback stored nil treated false", `"B"`, false, nil, Wrong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel := DecodeAnswer(json.RawMessage(tc.selected))
			if got := Grade(sel, correct, tc.hasCorrect, tc.stored); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// A canonical answer always outranks the stored flag, no matter what the flag
// claims.
func TestGrade_RecomputationBeatsStoredFlag(t *testing.T) {
	correct := DecodeAnswer(json.RawMessage(`"A"`))
	stale := []struct {
		selected string
		stored   *bool
		want     Classification
	}{
		{`"A"`, boolPtr(false), Correct}, // stale flag says wrong
		{`"B"`, boolPtr(true), Wrong},    // stale flag says right
	}
	for _, tc := range stale {
		sel := DecodeAnswer(json.RawMessage(tc.selected))
		if got := Grade(sel, correct, true, tc.stored); got != tc.want {
			t.Fatalf("selected %s stored %v: expected %s, got %s", tc.selected, *tc.stored, tc.want, got)
		}
	}
}

func TestGrade_Idempotent(t *testing.T) {
	sel := DecodeAnswer(json.RawMessage(`["B","A"]`))
	correct := DecodeAnswer(json.RawMessage(`["A","B"]`))
	first := Grade(sel, correct, true, nil)
	second := Grade(sel, correct, true, nil)
	if first != second {
		t.Fatalf("grade not idempotent: %s then %s", first, second)
	}
	if first != Correct {
		t.Fatalf("expected correct, got %s", first)
	}
}
