package interaction

import "context"

// GateResult tells the player whether it may keep going forward, and where
// to rewind to when it may not.
type GateResult struct {
	CanContinue        bool     `json:"can_continue"`
	RewindToSec        *float64 `json:"rewind_to_sec,omitempty"`
	Pending            *Summary `json:"pending_element,omitempty"`
	TotalMandatory     int      `json:"total_mandatory"`
	CompletedCorrectly int      `json:"completed_correctly"`
}

// ResolveGate applies the gate rule over the due mandatory elements,
// ordered by activation time. satisfied holds the IDs of elements with at
// least one correct attempt in history; once satisfied, an element stays
// satisfied regardless of later attempts.
//
// The learner is sent back to the FIRST unsatisfied element, not the most
// recent one: replaying from there re-encounters every later mandatory
// element in order, so none can be skipped.
func ResolveGate(due []Element, satisfied map[int64]bool) GateResult {
	res := GateResult{CanContinue: true, TotalMandatory: len(due)}
	for _, el := range due {
		if satisfied[el.ID] {
			res.CompletedCorrectly++
			continue
		}
		if res.CanContinue {
			el := el
			t := el.ActivateAtSec
			res.CanContinue = false
			res.RewindToSec = &t
			s := el.Summary()
			res.Pending = &s
		}
	}
	return res
}

// RetreatTime computes where the player must seek after an incorrect
// mandatory submission: just past the previous element's activation time,
// or the start of the video when the failed element is the first one.
// ordered is the video's active elements by ascending activation time.
func RetreatTime(ordered []Element, failedID int64) float64 {
	for i, el := range ordered {
		if el.ID == failedID {
			if i == 0 {
				return 0
			}
			return ordered[i-1].ActivateAtSec + 1
		}
	}
	return 0
}

// Gate answers "may the player keep going at time t" for a learner.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate { return &Gate{store: store} }

// Check fetches the due mandatory elements and the learner's attempt
// history, then applies the pure gate rule. Latest-attempt and
// any-correct states are computed here, in application code, over the
// ordered attempt list.
func (g *Gate) Check(ctx context.Context, userID string, videoID int64, currentSec float64) (GateResult, error) {
	due, err := g.store.ListMandatoryDue(ctx, videoID, currentSec)
	if err != nil {
		return GateResult{}, err
	}
	if len(due) == 0 {
		return GateResult{CanContinue: true}, nil
	}

	attempts, err := g.store.ListAttemptsForVideo(ctx, userID, videoID)
	if err != nil {
		return GateResult{}, err
	}
	satisfied := make(map[int64]bool)
	for _, a := range attempts {
		if a.Correct {
			satisfied[a.ElementID] = true
		}
	}
	return ResolveGate(due, satisfied), nil
}
