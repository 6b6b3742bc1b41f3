// Package interaction owns in-video interactive elements: their
// definitions and answer keys, learner response attempts, and the
// mandatory-interaction gate that controls forward playback.
package interaction

import (
	"encoding/json"
	"time"

	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

// Element is an interactive prompt anchored at a point in a video.
type Element struct {
	ID            int64                `json:"id"`
	VideoID       int64                `json:"video_id"`
	Type          evaluate.ElementType `json:"type"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	ActivateAtSec float64              `json:"activate_at_sec"`
	Mandatory     bool                 `json:"mandatory"`
	Points        int                  `json:"points"`
	TimeLimitSec  int                  `json:"time_limit_sec,omitempty"`
	Active        bool                 `json:"active"`

	// Config is nil when the stored payload could not be parsed; the
	// evaluator then degrades to an incorrect verdict with a diagnostic.
	Config  Config         `json:"config,omitempty"`
	Options []ElementOption `json:"options,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ElementOption struct {
	ID          int64  `json:"id"`
	ElementID   int64  `json:"element_id"`
	Label       string `json:"label"`
	Correct     bool   `json:"correct,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Position    int    `json:"position"`
}

// Summary identifies an element to the player without its answer key.
type Summary struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	ActivateAtSec float64 `json:"activate_at_sec"`
}

func (e Element) Summary() Summary {
	return Summary{ID: e.ID, Title: e.Title, ActivateAtSec: e.ActivateAtSec}
}

// Attempt is one learner submission against one element. Attempt numbers
// are per (user, element) and strictly increasing.
type Attempt struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ElementID  int64           `json:"element_id"`
	AttemptNo  int             `json:"attempt_no"`
	Correct    bool            `json:"correct"`
	Points     int             `json:"points"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	LatencySec float64         `json:"latency_sec"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ElementProgress is one row of the per-video progress listing: the element
// plus the learner's latest attempt, if any.
type ElementProgress struct {
	ElementID     int64                `json:"element_id"`
	Title         string               `json:"title"`
	Type          evaluate.ElementType `json:"type"`
	ActivateAtSec float64              `json:"activate_at_sec"`
	Mandatory     bool                 `json:"mandatory"`
	PointsMax     int                  `json:"points_max"`

	Attempted    bool  `json:"attempted"`
	Correct      *bool `json:"correct,omitempty"` // nil when never attempted
	PointsEarned int   `json:"points_earned"`
	AttemptCount int   `json:"attempt_count"`
}

// ProgressSummary aggregates an ElementProgress listing.
type ProgressSummary struct {
	Total           int     `json:"total"`
	Attempted       int     `json:"attempted"`
	Correct         int     `json:"correct"`
	PointsEarned    int     `json:"points_earned"`
	PointsMax       int     `json:"points_max"`
	PercentComplete float64 `json:"percent_complete"`
}

// Summarize folds a progress listing into aggregate stats.
func Summarize(items []ElementProgress) ProgressSummary {
	s := ProgressSummary{Total: len(items)}
	for _, it := range items {
		if it.Attempted {
			s.Attempted++
		}
		if it.Correct != nil && *it.Correct {
			s.Correct++
		}
		s.PointsEarned += it.PointsEarned
		s.PointsMax += it.PointsMax
	}
	if s.Total > 0 {
		s.PercentComplete = float64(s.Attempted) / float64(s.Total) * 100
	}
	return s
}

// ElementStats are response aggregates for one element.
type ElementStats struct {
	ElementID     int64   `json:"element_id"`
	TotalAttempts int     `json:"total_attempts"`
	CorrectCount  int     `json:"correct_count"`
	AvgLatencySec float64 `json:"avg_latency_sec"`
	AvgAttemptNo  float64 `json:"avg_attempt_no"`
	MaxAttemptNo  int     `json:"max_attempt_no"`
}

// RankingEntry is one row of the per-video points leaderboard.
type RankingEntry struct {
	UserID       string  `json:"user_id"`
	TotalPoints  int     `json:"total_points"`
	Attempts     int     `json:"attempts"`
	CorrectCount int     `json:"correct_count"`
	AccuracyPct  float64 `json:"accuracy_pct"`
}
