package evaluate

import (
	"fmt"
	"math"
)

// clickPointStrategy matches submitted coordinates against target points.
// A submitted point counts when its Euclidean distance to any target is
// within the tolerance; the fraction of matched targets must reach the
// pass threshold. Element-level settings override the evaluator defaults.
type clickPointStrategy struct {
	tolerance   float64
	passPercent float64
}

func (s clickPointStrategy) Evaluate(el Element, resp Response) Verdict {
	if len(el.Targets) == 0 {
		return Verdict{Explanation: "element has no target points configured"}
	}
	if len(resp.ClickedPoints) == 0 {
		return Verdict{Explanation: "no points submitted"}
	}

	tolerance := s.tolerance
	if el.ToleranceUnits > 0 {
		tolerance = el.ToleranceUnits
	}
	passPercent := s.passPercent
	if el.PassPercent > 0 {
		passPercent = el.PassPercent
	}

	matched := 0
	for _, p := range resp.ClickedPoints {
		for _, t := range el.Targets {
			if dist(p, t) <= tolerance {
				matched++
				break
			}
		}
	}

	total := len(el.Targets)
	pct := float64(matched) / float64(total) * 100

	return Verdict{
		Correct:     pct >= passPercent,
		Explanation: fmt.Sprintf("%d/%d points identified correctly", matched, total),
		Details: map[string]any{
			"matched": matched,
			"total":   total,
			"percent": pct,
		},
	}
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
