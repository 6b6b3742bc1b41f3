package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

func mandatory(id int64, at float64) Element {
	return Element{
		ID:            id,
		VideoID:       1,
		Type:          evaluate.TypeMultipleChoice,
		Title:         "q",
		ActivateAtSec: at,
		Mandatory:     true,
		Active:        true,
	}
}

func TestResolveGateAllSatisfied(t *testing.T) {
	due := []Element{mandatory(1, 10), mandatory(2, 30)}
	res := ResolveGate(due, map[int64]bool{1: true, 2: true})

	assert.True(t, res.CanContinue)
	assert.Nil(t, res.RewindToSec)
	assert.Equal(t, 2, res.TotalMandatory)
	assert.Equal(t, 2, res.CompletedCorrectly)
}

func TestResolveGateFirstPendingWins(t *testing.T) {
	// element at t=10 unresolved, t=30 resolved: rewind to 10, not 30.
	due := []Element{mandatory(1, 10), mandatory(2, 30)}
	res := ResolveGate(due, map[int64]bool{2: true})

	assert.False(t, res.CanContinue)
	if assert.NotNil(t, res.RewindToSec) {
		assert.Equal(t, 10.0, *res.RewindToSec)
	}
	if assert.NotNil(t, res.Pending) {
		assert.Equal(t, int64(1), res.Pending.ID)
	}
	assert.Equal(t, 2, res.TotalMandatory)
	assert.Equal(t, 1, res.CompletedCorrectly)
}

func TestResolveGateNoDueElements(t *testing.T) {
	res := ResolveGate(nil, nil)
	assert.True(t, res.CanContinue)
	assert.Equal(t, 0, res.TotalMandatory)
}

func TestRetreatTime(t *testing.T) {
	ordered := []Element{mandatory(1, 10), mandatory(2, 30), mandatory(3, 55)}

	assert.Equal(t, 0.0, RetreatTime(ordered, 1), "first element rewinds to start")
	assert.Equal(t, 11.0, RetreatTime(ordered, 2), "predecessor activation + 1")
	assert.Equal(t, 31.0, RetreatTime(ordered, 3))
	assert.Equal(t, 0.0, RetreatTime(ordered, 99), "unknown element defaults to start")
	assert.Equal(t, 0.0, RetreatTime(nil, 1))
}

func TestGateCheck(t *testing.T) {
	store := newFakeInteractionStore(mandatory(1, 10), mandatory(2, 30))
	store.addAttempt(Attempt{ID: "a1", UserID: "u1", ElementID: 2, AttemptNo: 1, Correct: true})
	gate := NewGate(store)

	res, err := gate.Check(context.Background(), "u1", 1, 40)
	assert.NoError(t, err)
	assert.False(t, res.CanContinue)
	if assert.NotNil(t, res.RewindToSec) {
		assert.Equal(t, 10.0, *res.RewindToSec)
	}

	// before the first element activates, nothing is due
	res, err = gate.Check(context.Background(), "u1", 1, 5)
	assert.NoError(t, err)
	assert.True(t, res.CanContinue)
}

func TestGateResolvedIsPermanent(t *testing.T) {
	store := newFakeInteractionStore(mandatory(1, 10))
	store.addAttempt(Attempt{ID: "a1", UserID: "u1", ElementID: 1, AttemptNo: 1, Correct: true})
	store.addAttempt(Attempt{ID: "a2", UserID: "u1", ElementID: 1, AttemptNo: 2, Correct: false})
	gate := NewGate(store)

	// a later incorrect retry does not revoke the satisfied gate
	res, err := gate.Check(context.Background(), "u1", 1, 20)
	assert.NoError(t, err)
	assert.True(t, res.CanContinue)
	assert.Equal(t, 1, res.CompletedCorrectly)
}
