// Package collide merges independently-obtained descending activity ID lists.
//
// One query typically fans out to several data sources, each answering a
// different clause. Collide folds their results into a single descending,
// de-duplicated list under a count budget: OR semantics over query clauses.
package collide

import "github.com/hupe1980/streamscope/model"

// Collide merges two descending ID lists into one descending, de-duplicated
// list of at most maxCount entries. Any ID present in either input appears
// exactly once; once the budget is reached merging stops even if the inputs
// are not exhausted.
//
// Inputs must be strictly descending. Inputs violating the precondition
// produce unspecified ordering in the result.
func Collide(a, b []model.ActivityID, maxCount int) []model.ActivityID {
	if maxCount <= 0 {
		return nil
	}
	out := make([]model.ActivityID, 0, min(len(a)+len(b), maxCount))

	i, j := 0, 0
	for len(out) < maxCount && (i < len(a) || j < len(b)) {
		switch {
		case i == len(a):
			out = append(out, b[j])
			j++
		case j == len(b):
			out = append(out, a[i])
			i++
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] > b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	return out
}

// Fold collides a running result with each list in turn, accumulating into
// one budgeted union. An empty lists argument yields nil.
func Fold(maxCount int, lists ...[]model.ActivityID) []model.ActivityID {
	var out []model.ActivityID
	for n, l := range lists {
		if n == 0 {
			out = Collide(l, nil, maxCount)
			continue
		}
		out = Collide(out, l, maxCount)
	}
	return out
}
