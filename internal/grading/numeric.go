package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// numericStrategy accepts exact string match or numeric tolerance encoded in
// the key. Tolerances ride along in a wrapped key:
//
//	{"answer":"3.14159","tol":0.01}     // absolute
//	{"answer":"100","reltol":0.05}      // 5% relative
type numericStrategy struct{}

func (numericStrategy) Grade(q Q, selected json.RawMessage) Result {
	res := Result{Answered: true}
	target, ok := keyScalar(q.Key)
	if !ok {
		return res
	}
	sel := scalarOf(selected)
	if strings.TrimSpace(sel) == "" {
		return Result{}
	}
	if fold(sel) == fold(target) {
		res.Correct = true
		res.Points = q.Points
		return res
	}

	rv, rOK := parseFloatLoose(sel)
	tv, tOK := parseFloatLoose(target)
	if !rOK || !tOK {
		return res
	}

	absTol, relTol := tolerances(q.Key)
	diff := math.Abs(rv - tv)
	pass := diff == 0
	if !pass && absTol > 0 && diff <= absTol {
		pass = true
	}
	if !pass && relTol > 0 && diff <= relTol*math.Abs(tv) {
		pass = true
	}
	if pass {
		res.Correct = true
		res.Points = q.Points
	}
	return res
}

// parseFloatLoose takes the first parseable token, so "42 kg" still grades.
func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	for _, f := range strings.Fields(s) {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func tolerances(key json.RawMessage) (absTol, relTol float64) {
	var t struct {
		Tol    float64 `json:"tol"`
		RelTol float64 `json:"reltol"`
	}
	_ = json.Unmarshal(key, &t)
	return t.Tol, t.RelTol
}
