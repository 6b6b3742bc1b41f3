package progress

import "context"

// AccessDecision is the outcome of a sequential-access check.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanAccess decides whether a learner may open the video at requestedOrder
// given their highest completed position in the course (nil when nothing is
// completed). Learners may replay anything already unlocked, or advance
// exactly one step past the last completed video.
func CanAccess(requestedOrder int, lastCompletedOrder *int) AccessDecision {
	if lastCompletedOrder == nil {
		if requestedOrder == 1 {
			return AccessDecision{Allowed: true}
		}
		return AccessDecision{Reason: "must start with the first video"}
	}
	if requestedOrder <= *lastCompletedOrder+1 {
		return AccessDecision{Allowed: true}
	}
	return AccessDecision{Reason: "complete the previous video before continuing"}
}

// AccessGate resolves the inputs for CanAccess from the store.
type AccessGate struct {
	store Store
}

func NewAccessGate(store Store) *AccessGate { return &AccessGate{store: store} }

// Check looks up the requested video and the learner's last completed
// position in the same course, then applies the pure rule.
func (g *AccessGate) Check(ctx context.Context, userID string, videoID int64) (AccessDecision, Video, error) {
	video, err := g.store.GetVideo(ctx, videoID)
	if err != nil {
		return AccessDecision{}, Video{}, err
	}
	last, err := g.store.LastCompletedOrder(ctx, userID, video.CourseID)
	if err != nil {
		return AccessDecision{}, Video{}, err
	}
	return CanAccess(video.Position, last), video, nil
}
