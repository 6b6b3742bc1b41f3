package progress

import "time"

type Video struct {
	ID          int64   `json:"id"`
	CourseID    int64   `json:"course_id"`
	ModuleID    int64   `json:"module_id"`
	Position    int     `json:"position"` // 1-based order within the course
	Title       string  `json:"title"`
	DurationSec float64 `json:"duration_sec"`
}

// WatchProgress is the single logical row per (learner, video) pair.
type WatchProgress struct {
	UserID         string    `json:"user_id"`
	VideoID        int64     `json:"video_id"`
	SecondsWatched float64   `json:"seconds_watched"`
	Completed      bool      `json:"completed"`
	UpdatedAt      time.Time `json:"updated_at"`
}
