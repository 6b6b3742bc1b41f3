// Package progress tracks per-learner watched seconds and the derived
// completion state, and gates sequential access across course videos.
package progress

import (
	"context"
	"math"
	"time"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
)

// Store is the persistence surface the tracker and access gate need.
type Store interface {
	PutVideo(ctx context.Context, v Video) (Video, error)
	GetVideo(ctx context.Context, id int64) (Video, error)

	GetWatchProgress(ctx context.Context, userID string, videoID int64) (*WatchProgress, error)
	SaveWatchProgress(ctx context.Context, rec WatchProgress) error
	ListWatchProgress(ctx context.Context, userID string) ([]WatchProgress, error)
	ResetWatchProgress(ctx context.Context, userID string, videoID int64) error

	// LastCompletedOrder returns the highest completed video position for
	// the learner within a course, or nil when nothing is completed yet.
	LastCompletedOrder(ctx context.Context, userID string, courseID int64) (*int, error)
}

// Tracker applies the monotonic watched-seconds rules.
type Tracker struct {
	store    Store
	slackSec float64
	ratio    float64
	now      func() time.Time
}

type TrackerOption func(*Tracker)

// WithCompletionSlack overrides the trailing-seconds slack.
func WithCompletionSlack(sec float64) TrackerOption {
	return func(t *Tracker) { t.slackSec = sec }
}

// WithCompletionRatio overrides the completed-fraction threshold.
func WithCompletionRatio(ratio float64) TrackerOption {
	return func(t *Tracker) { t.ratio = ratio }
}

func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:    store,
		slackSec: 2,
		ratio:    0.99,
		now:      time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// CompletionThreshold is the watched-seconds value at or above which a
// video counts as fully watched. The slack tolerates trailing-frame and
// seek imprecision near the end.
func (t *Tracker) CompletionThreshold(durationSec float64) float64 {
	return math.Max(durationSec-t.slackSec, durationSec*t.ratio)
}

// Report folds a new watched-seconds sample into the stored progress.
// Reports never move progress backward and never un-complete a video.
func (t *Tracker) Report(ctx context.Context, userID string, videoID int64, secondsWatched float64) (WatchProgress, error) {
	if userID == "" {
		return WatchProgress{}, errs.Validation("user id is required")
	}
	if videoID <= 0 {
		return WatchProgress{}, errs.Validation("video id is required")
	}
	if secondsWatched < 0 {
		return WatchProgress{}, errs.Validation("seconds watched cannot be negative")
	}

	video, err := t.store.GetVideo(ctx, videoID)
	if err != nil {
		return WatchProgress{}, err
	}

	prior, err := t.store.GetWatchProgress(ctx, userID, videoID)
	if err != nil {
		return WatchProgress{}, err
	}

	seconds := secondsWatched
	completed := false
	if prior != nil {
		seconds = math.Max(seconds, prior.SecondsWatched)
		completed = prior.Completed
	}
	if seconds >= t.CompletionThreshold(video.DurationSec) {
		completed = true
	}
	seconds = math.Min(seconds, video.DurationSec)

	rec := WatchProgress{
		UserID:         userID,
		VideoID:        videoID,
		SecondsWatched: seconds,
		Completed:      completed,
		UpdatedAt:      t.now(),
	}
	if err := t.store.SaveWatchProgress(ctx, rec); err != nil {
		return WatchProgress{}, err
	}
	return rec, nil
}
