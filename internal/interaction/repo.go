package interaction

import "context"

// ElementUpdate carries the mutable fields of an element; nil means keep.
type ElementUpdate struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	ActivateAtSec *float64 `json:"activate_at_sec,omitempty"`
	Mandatory     *bool    `json:"mandatory,omitempty"`
	Points        *int     `json:"points,omitempty"`
	TimeLimitSec  *int     `json:"time_limit_sec,omitempty"`
	Config        Config   `json:"-"`
}

// Store supplies element definitions and answer keys and persists response
// attempts. The soft-delete active flag is applied here: listing methods
// only ever return active elements, so the gate and evaluation code never
// see the flag.
type Store interface {
	CreateElement(ctx context.Context, el Element) (Element, error)
	GetElement(ctx context.Context, id int64) (Element, error)
	// ListByVideo returns the video's active elements ordered by
	// activation time, options included.
	ListByVideo(ctx context.Context, videoID int64) ([]Element, error)
	// ListMandatoryDue returns active mandatory elements with activation
	// time at or before uptoSec, ordered by activation time.
	ListMandatoryDue(ctx context.Context, videoID int64, uptoSec float64) ([]Element, error)
	UpdateElement(ctx context.Context, id int64, upd ElementUpdate) error
	DeactivateElement(ctx context.Context, id int64) error
	DeleteElement(ctx context.Context, id int64) error

	// ListAttempts returns every attempt for (user, element) ordered by
	// attempt number ascending; "latest" is computed by callers.
	ListAttempts(ctx context.Context, userID string, elementID int64) ([]Attempt, error)
	// ListAttemptsForVideo returns the user's attempts across all of the
	// video's active elements, ordered by element then attempt number.
	ListAttemptsForVideo(ctx context.Context, userID string, videoID int64) ([]Attempt, error)
	// InsertAttempt persists a new attempt, retrying on attempt-number
	// collisions from concurrent submissions.
	InsertAttempt(ctx context.Context, a Attempt) (Attempt, error)

	VideoProgress(ctx context.Context, userID string, videoID int64) ([]ElementProgress, error)
	ElementStats(ctx context.Context, elementID int64) (ElementStats, error)
	Ranking(ctx context.Context, videoID int64, limit int) ([]RankingEntry, error)
	// ResetProgress deletes every attempt the user made against the
	// video's elements; reports whether anything was removed.
	ResetProgress(ctx context.Context, userID string, videoID int64) (bool, error)
}
