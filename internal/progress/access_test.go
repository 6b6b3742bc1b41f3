package progress

import (
	"context"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestCanAccessNothingCompleted(t *testing.T) {
	tests := []struct {
		order int
		want  bool
	}{
		{1, true},
		{2, false},
		{3, false},
	}
	for _, tt := range tests {
		got := CanAccess(tt.order, nil)
		if got.Allowed != tt.want {
			t.Fatalf("order %d: allowed=%v, want %v", tt.order, got.Allowed, tt.want)
		}
	}
	if got := CanAccess(2, nil); got.Reason != "must start with the first video" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestCanAccessAfterCompletion(t *testing.T) {
	last := intPtr(2)
	tests := []struct {
		order int
		want  bool
	}{
		{1, true}, // replay
		{2, true}, // replay
		{3, true}, // advance one step
		{4, false},
	}
	for _, tt := range tests {
		got := CanAccess(tt.order, last)
		if got.Allowed != tt.want {
			t.Fatalf("order %d: allowed=%v, want %v", tt.order, got.Allowed, tt.want)
		}
	}
	if got := CanAccess(4, last); got.Reason != "complete the previous video before continuing" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestAccessGateCheck(t *testing.T) {
	store := newFakeStore(
		Video{ID: 1, CourseID: 7, Position: 1, DurationSec: 100},
		Video{ID: 2, CourseID: 7, Position: 2, DurationSec: 100},
		Video{ID: 3, CourseID: 7, Position: 3, DurationSec: 100},
	)
	gate := NewAccessGate(store)
	tr := NewTracker(store)
	ctx := context.Background()

	// nothing completed: only the first video opens
	dec, _, err := gate.Check(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if dec.Allowed {
		t.Fatalf("video 2 should be locked before any completion")
	}
	dec, video, err := gate.Check(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !dec.Allowed || video.ID != 1 {
		t.Fatalf("video 1 should open: %+v %+v", dec, video)
	}

	// complete video 1 then video 2 unlocks, video 3 stays locked
	if _, err := tr.Report(ctx, "u1", 1, 100); err != nil {
		t.Fatalf("report: %v", err)
	}
	dec, _, _ = gate.Check(ctx, "u1", 2)
	if !dec.Allowed {
		t.Fatalf("video 2 should unlock after completing video 1")
	}
	dec, _, _ = gate.Check(ctx, "u1", 3)
	if dec.Allowed {
		t.Fatalf("video 3 should stay locked")
	}
}
