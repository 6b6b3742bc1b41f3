package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePointsSpeedBonus(t *testing.T) {
	p := DefaultScoringPolicy()
	el := Element{Type: TypeMultipleChoice, Points: 10, TimeLimitSec: 100}

	tests := []struct {
		name    string
		latency float64
		want    int
	}{
		{"fast half", 40, 15},
		{"exactly half", 50, 15},
		{"quick three quarters", 80, 13}, // round(10 * 1.25)
		{"slow", 95, 10},
		{"over the limit", 140, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ComputePoints(true, el, tt.latency))
		})
	}
}

func TestComputePointsIncorrectIsZero(t *testing.T) {
	p := DefaultScoringPolicy()
	el := Element{Type: TypeMultipleChoice, Points: 10, TimeLimitSec: 100}
	assert.Equal(t, 0, p.ComputePoints(false, el, 10))
}

func TestComputePointsDefaults(t *testing.T) {
	p := DefaultScoringPolicy()

	// unset point value falls back to the base
	assert.Equal(t, 10, p.ComputePoints(true, Element{Type: TypeTextEntry}, 0))

	// no time limit: no bonus regardless of latency
	assert.Equal(t, 7, p.ComputePoints(true, Element{Type: TypeTextEntry, Points: 7}, 1))

	// unknown latency: no bonus
	assert.Equal(t, 7, p.ComputePoints(true, Element{Type: TypeTextEntry, Points: 7, TimeLimitSec: 60}, 0))
}
