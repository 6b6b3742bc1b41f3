package interaction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

// Service evaluates learner submissions and records attempts.
type Service struct {
	store   Store
	eval    *evaluate.Evaluator
	scoring evaluate.ScoringPolicy
	now     func() time.Time
}

func NewService(store Store, eval *evaluate.Evaluator, scoring evaluate.ScoringPolicy) *Service {
	return &Service{store: store, eval: eval, scoring: scoring, now: time.Now}
}

// SubmitResult is what the player needs after a submission: the verdict,
// the recorded attempt, and whether it must seek backward right now.
type SubmitResult struct {
	Attempt     Attempt          `json:"attempt"`
	Verdict     evaluate.Verdict `json:"verdict"`
	MustRetreat bool             `json:"must_retreat"`
	RewindToSec float64          `json:"rewind_to_sec"`
}

// SubmitResponse evaluates a submission, scores it, and records the next
// attempt for (user, element). An incorrect answer to a mandatory element
// triggers an immediate retreat to just past the preceding element.
func (s *Service) SubmitResponse(ctx context.Context, userID string, elementID int64, resp evaluate.Response, latencySec float64) (SubmitResult, error) {
	if userID == "" {
		return SubmitResult{}, errs.Validation("user id is required")
	}
	if elementID <= 0 {
		return SubmitResult{}, errs.Validation("element id is required")
	}
	if latencySec < 0 {
		return SubmitResult{}, errs.Validation("response latency cannot be negative")
	}
	if resp.Empty() {
		return SubmitResult{}, errs.Validation("a response is required")
	}

	el, err := s.store.GetElement(ctx, elementID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !el.Active {
		return SubmitResult{}, errs.NotFound("element not found")
	}

	// Latest attempt number over the ordered list, in application code.
	attempts, err := s.store.ListAttempts(ctx, userID, elementID)
	if err != nil {
		return SubmitResult{}, err
	}
	attemptNo := 1
	if n := len(attempts); n > 0 {
		attemptNo = attempts[n-1].AttemptNo + 1
	}

	view := EvalView(el)
	verdict := s.eval.Evaluate(view, resp)
	points := s.scoring.ComputePoints(verdict.Correct, view, latencySec)

	payload, err := json.Marshal(resp)
	if err != nil {
		return SubmitResult{}, errs.Internal("encode response payload", err)
	}

	attempt, err := s.store.InsertAttempt(ctx, Attempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		ElementID:  elementID,
		AttemptNo:  attemptNo,
		Correct:    verdict.Correct,
		Points:     points,
		Payload:    payload,
		LatencySec: latencySec,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return SubmitResult{}, err
	}

	res := SubmitResult{Attempt: attempt, Verdict: verdict}
	if el.Mandatory && !verdict.Correct {
		ordered, err := s.store.ListByVideo(ctx, el.VideoID)
		if err != nil {
			return SubmitResult{}, err
		}
		res.MustRetreat = true
		res.RewindToSec = RetreatTime(ordered, el.ID)
	}
	return res, nil
}

// NextElement returns the first active element activating strictly after
// afterSec, or nil when the video has none left.
func (s *Service) NextElement(ctx context.Context, videoID int64, afterSec float64) (*Summary, error) {
	elements, err := s.store.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if el.ActivateAtSec > afterSec {
			sum := el.Summary()
			return &sum, nil
		}
	}
	return nil, nil
}

// Progress returns the per-element listing (latest attempt per element)
// plus aggregate stats for a learner on a video.
func (s *Service) Progress(ctx context.Context, userID string, videoID int64) ([]ElementProgress, ProgressSummary, error) {
	items, err := s.store.VideoProgress(ctx, userID, videoID)
	if err != nil {
		return nil, ProgressSummary{}, err
	}
	return items, Summarize(items), nil
}
