package evaluate

import "math"

// ScoringPolicy converts a verdict into awarded points. Fast correct
// answers relative to the element's time limit earn a multiplier.
type ScoringPolicy struct {
	BasePoints int // used when the element has no point value

	FastRatio  float64 // latency/limit at or below this earns FastBonus
	FastBonus  float64
	QuickRatio float64 // latency/limit at or below this earns QuickBonus
	QuickBonus float64
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		BasePoints: 10,
		FastRatio:  0.5,
		FastBonus:  1.5,
		QuickRatio: 0.75,
		QuickBonus: 1.25,
	}
}

// ComputePoints awards 0 for incorrect verdicts; otherwise the element's
// point value (or BasePoints when unset), multiplied by the speed bonus
// when both a time limit and a known latency are present.
func (p ScoringPolicy) ComputePoints(correct bool, el Element, latencySec float64) int {
	if !correct {
		return 0
	}
	points := el.Points
	if points <= 0 {
		points = p.BasePoints
	}
	if el.TimeLimitSec > 0 && latencySec > 0 {
		ratio := latencySec / float64(el.TimeLimitSec)
		switch {
		case ratio <= p.FastRatio:
			points = int(math.Round(float64(points) * p.FastBonus))
		case ratio <= p.QuickRatio:
			points = int(math.Round(float64(points) * p.QuickBonus))
		}
	}
	return points
}
