// Package scoring is the astrological influence scoring engine.
package scoring

import (
	"fmt"
	"sort"
)

// Reasons is a deduplicated set of human-readable audit strings explaining a
// score. Reasons are advisory; no numeric result depends on them.
type Reasons map[string]struct{}

// NewReasons returns an empty set.
func NewReasons() Reasons { return make(Reasons) }

// Addf formats and records a reason.
func (r Reasons) Addf(format string, args ...any) {
	if r == nil {
		return
	}
	r[fmt.Sprintf(format, args...)] = struct{}{}
}

// Merge adds every reason from other.
func (r Reasons) Merge(other Reasons) {
	for k := range other {
		r[k] = struct{}{}
	}
}

// Sorted returns the reasons in lexical order.
func (r Reasons) Sorted() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ScoreResult is a bounded score with its audit trail.
type ScoreResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
