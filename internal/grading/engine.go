// Package grading scores responses at submit time. Its verdicts are written
// to the attempt and response rows for quick display; the reporting engine
// re-derives correctness from the answer keys and treats these stored values
// as advisory only.
package grading

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Q is the minimal view of a question needed for scoring.
type Q struct {
	Type   string
	Points float64
	Key    json.RawMessage // scalar, list, or {"answer":...} object
}

// Result is the outcome of scoring a single response.
type Result struct {
	Points   float64
	Correct  bool
	Answered bool
}

// Strategy scores a single question type.
type Strategy interface {
	Grade(q Q, selected json.RawMessage) Result
}

// Grader routes by question type to the right Strategy.
type Grader interface {
	Grade(q Q, selected json.RawMessage) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, selected json.RawMessage) Result {
	if isNullJSON(selected) {
		return Result{}
	}
	s, ok := g.strategies[q.Type]
	if !ok {
		// unknown type: strict string compare is the safe default
		s = singleStrategy{}
	}
	return s.Grade(q, selected)
}

type Option func(*config)

type config struct {
	MaxEditDistance   int  // fuzzy slack for text answers
	AllowPartialMulti bool // partial credit for multi without false positives
}

func WithMaxEditDistance(n int) Option { return func(c *config) { c.MaxEditDistance = n } }
func WithPartialMulti(b bool) Option   { return func(c *config) { c.AllowPartialMulti = b } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		MaxEditDistance:   1,
		AllowPartialMulti: true,
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single":  singleStrategy{},
			"multi":   multiStrategy{allowPartial: cfg.AllowPartialMulti},
			"numeric": numericStrategy{},
			"text":    textStrategy{maxEdit: cfg.MaxEditDistance},
		},
	}
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Grade(q Q, selected json.RawMessage) Result {
	res := Result{Answered: true}
	key, ok := keyScalar(q.Key)
	if !ok {
		return res
	}
	if fold(scalarOf(selected)) == fold(key) {
		res.Correct = true
		res.Points = q.Points
	}
	return res
}

type multiStrategy struct{ allowPartial bool }

func (s multiStrategy) Grade(q Q, selected json.RawMessage) Result {
	res := Result{Answered: true}
	key := keyList(q.Key)
	if len(key) == 0 {
		return res
	}
	sel := listOf(selected)
	if len(sel) == 0 {
		return Result{}
	}
	correct := toSet(key)
	chosen := toSet(sel)

	if setEqual(correct, chosen) {
		res.Correct = true
		res.Points = q.Points
		return res
	}
	hasFalsePositive := false
	for c := range chosen {
		if _, ok := correct[c]; !ok {
			hasFalsePositive = true
			break
		}
	}
	if s.allowPartial && !hasFalsePositive {
		inter := 0
		for c := range chosen {
			if _, ok := correct[c]; ok {
				inter++
			}
		}
		res.Points = q.Points * (float64(inter) / float64(len(correct)))
	}
	return res
}

type textStrategy struct{ maxEdit int }

func (s textStrategy) Grade(q Q, selected json.RawMessage) Result {
	res := Result{Answered: true}
	key, ok := keyScalar(q.Key)
	if !ok {
		return res
	}
	nk := normalize(key)
	ns := normalize(scalarOf(selected))
	if ns == "" {
		return Result{}
	}
	if ns == nk {
		res.Correct = true
		res.Points = q.Points
		return res
	}
	if s.maxEdit > 0 && levenshtein(nk, ns) <= s.maxEdit {
		// close enough to accept; reporting may still disagree
		res.Correct = true
		res.Points = q.Points
	}
	return res
}

// --- decoding helpers ---

func isNullJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// keyScalar unwraps a scalar or {"answer":...}/{"value":...} key.
func keyScalar(raw json.RawMessage) (string, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64, bool:
		return scalarOf(raw), true
	case map[string]interface{}:
		if a, ok := t["answer"]; ok {
			return asString(a), true
		}
		if a, ok := t["value"]; ok {
			return asString(a), true
		}
	}
	return "", false
}

func keyList(raw json.RawMessage) []string {
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, asString(e))
	}
	return out
}

// scalarOf renders any selection as a single comparable string.
func scalarOf(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return asString(v)
}

func listOf(raw json.RawMessage) []string {
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err != nil {
		if s := scalarOf(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, asString(e))
	}
	return out
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[fold(s)] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
