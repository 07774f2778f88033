package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AnswerKind tags the closed set of answer shapes the platform has stored
// over time. Raw JSON is decoded into an Answer exactly once, at the
// ingestion boundary; everything downstream dispatches on Kind instead of
// re-inspecting JSON.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota // absent / JSON null
	AnswerScalar
	AnswerMulti
	AnswerWrapped // object carrying an "answer" (or legacy "value") field
)

// Answer is the decoded form of a selected or correct answer.
type Answer struct {
	Kind   AnswerKind
	Value  string   // scalar or unwrapped value
	Values []string // multi-choice selections, in stored order
}

// DecodeAnswer turns raw stored JSON into an Answer. It is total: anything
// that fails to parse degrades to a scalar carrying the raw text, so a
// malformed record can still be compared instead of aborting the report.
func DecodeAnswer(raw json.RawMessage) Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Answer{Kind: AnswerNone}
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Answer{Kind: AnswerScalar, Value: string(raw)}
	}
	return answerFromValue(v)
}

func answerFromValue(v interface{}) Answer {
	switch t := v.(type) {
	case nil:
		return Answer{Kind: AnswerNone}
	case []interface{}:
		vals := make([]string, 0, len(t))
		for _, e := range t {
			vals = append(vals, stringify(e))
		}
		return Answer{Kind: AnswerMulti, Values: vals}
	case map[string]interface{}:
		// Only the "answer" field is meaningful; "value" is the legacy name.
		if a, ok := t["answer"]; ok {
			return Answer{Kind: AnswerWrapped, Value: stringify(a)}
		}
		if a, ok := t["value"]; ok {
			return Answer{Kind: AnswerWrapped, Value: stringify(a)}
		}
		return Answer{Kind: AnswerWrapped}
	default:
		return Answer{Kind: AnswerScalar, Value: stringify(t)}
	}
}

// IsNone reports whether the answer was absent, i.e. the response is
// unanswered. Callers classify this before ever reaching Equals.
func (a Answer) IsNone() bool { return a.Kind == AnswerNone }

// Equals compares a submitted answer against the canonical one. Pure and
// total; dispatch is on the CORRECT side's shape:
//
//   - multi: order-independent, length-checked compare of normalized
//     elements; a scalar selection is wrapped into a singleton list
//   - wrapped: the unwrapped value against the selection as a scalar
//   - scalar: direct normalized compare
//
// Only the correct side is ever unwrapped; selections are not stored in the
// wrapped shape, and one that shows up anyway is compared as a scalar.
func Equals(selected, correct Answer) bool {
	switch correct.Kind {
	case AnswerMulti:
		sel := selected.Values
		if selected.Kind != AnswerMulti {
			sel = []string{selected.scalar()}
		}
		if len(sel) != len(correct.Values) {
			return false
		}
		a := normalizedSorted(sel)
		b := normalizedSorted(correct.Values)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	default:
		return normalize(selected.scalar()) == normalize(correct.scalar())
	}
}

// Key renders the answer as the frequency-map key used for wrong-answer
// tallies: normalized, with multi selections joined in submitted order.
func (a Answer) Key() string {
	if a.Kind == AnswerMulti {
		parts := make([]string, len(a.Values))
		for i, v := range a.Values {
			parts[i] = normalize(v)
		}
		return strings.Join(parts, ",")
	}
	return normalize(a.scalar())
}

// scalar coerces any shape to a single string for degraded comparisons.
func (a Answer) scalar() string {
	if a.Kind == AnswerMulti {
		return strings.Join(a.Values, ",")
	}
	return a.Value
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizedSorted(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = normalize(v)
	}
	sort.Strings(out)
	return out
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
