package progress

import (
	"context"
	"fmt"
	"testing"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
)

/* ---------------- In-memory fake that satisfies progress.Store ---------------- */

type fakeStore struct {
	videos   map[int64]Video
	progress map[string]WatchProgress // key: userID|videoID
	saves    int
}

func newFakeStore(videos ...Video) *fakeStore {
	s := &fakeStore{
		videos:   map[int64]Video{},
		progress: map[string]WatchProgress{},
	}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return s
}

func key(userID string, videoID int64) string {
	return fmt.Sprintf("%s|%d", userID, videoID)
}

func (s *fakeStore) PutVideo(_ context.Context, v Video) (Video, error) {
	s.videos[v.ID] = v
	return v, nil
}

func (s *fakeStore) GetVideo(_ context.Context, id int64) (Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return Video{}, errs.NotFound("video not found")
	}
	return v, nil
}

func (s *fakeStore) GetWatchProgress(_ context.Context, userID string, videoID int64) (*WatchProgress, error) {
	if rec, ok := s.progress[key(userID, videoID)]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *fakeStore) SaveWatchProgress(_ context.Context, rec WatchProgress) error {
	s.progress[key(rec.UserID, rec.VideoID)] = rec
	s.saves++
	return nil
}

func (s *fakeStore) ListWatchProgress(_ context.Context, userID string) ([]WatchProgress, error) {
	var out []WatchProgress
	for _, rec := range s.progress {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) ResetWatchProgress(_ context.Context, userID string, videoID int64) error {
	delete(s.progress, key(userID, videoID))
	return nil
}

func (s *fakeStore) LastCompletedOrder(_ context.Context, userID string, courseID int64) (*int, error) {
	var best *int
	for _, rec := range s.progress {
		if rec.UserID != userID || !rec.Completed {
			continue
		}
		v, ok := s.videos[rec.VideoID]
		if !ok || v.CourseID != courseID {
			continue
		}
		pos := v.Position
		if best == nil || pos > *best {
			best = &pos
		}
	}
	return best, nil
}

/* ---------------- Tests ---------------- */

func TestReportCompletionThreshold(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 300})
	tr := NewTracker(store)

	// threshold for 300s is max(298, 297) = 298
	rec, err := tr.Report(context.Background(), "u1", 1, 297)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.Completed {
		t.Fatalf("297s should not complete a 300s video")
	}

	rec, err = tr.Report(context.Background(), "u1", 1, 298)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("298s should complete a 300s video")
	}
}

func TestReportFreshZeroIsNotComplete(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 120})
	tr := NewTracker(store)

	rec, err := tr.Report(context.Background(), "u1", 1, 0)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.Completed || rec.SecondsWatched != 0 {
		t.Fatalf("fresh zero report should store 0s incomplete, got %+v", rec)
	}
}

func TestReportMonotonic(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 100})
	tr := NewTracker(store)
	ctx := context.Background()

	if _, err := tr.Report(ctx, "u1", 1, 99); err != nil {
		t.Fatalf("report: %v", err)
	}
	rec, err := tr.Report(ctx, "u1", 1, 10)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.SecondsWatched != 99 {
		t.Fatalf("smaller report must not lower seconds: got %v", rec.SecondsWatched)
	}
	if !rec.Completed {
		t.Fatalf("a later smaller report must not un-complete the video")
	}
}

func TestReportClampsToDuration(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 60})
	tr := NewTracker(store)

	rec, err := tr.Report(context.Background(), "u1", 1, 500)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rec.SecondsWatched != 60 {
		t.Fatalf("seconds must clamp to duration, got %v", rec.SecondsWatched)
	}
	if !rec.Completed {
		t.Fatalf("over-reporting past the threshold should complete")
	}
}

func TestReportZeroDurationCompletesImmediately(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 0})
	tr := NewTracker(store)

	rec, err := tr.Report(context.Background(), "u1", 1, 0)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("zero-duration video should complete on first report")
	}
}

func TestReportIdempotent(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 100})
	tr := NewTracker(store)
	ctx := context.Background()

	first, err := tr.Report(ctx, "u1", 1, 42)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	second, err := tr.Report(ctx, "u1", 1, 42)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if first.SecondsWatched != second.SecondsWatched || first.Completed != second.Completed {
		t.Fatalf("same report twice must produce the same state: %+v vs %+v", first, second)
	}
}

func TestReportUnknownVideo(t *testing.T) {
	tr := NewTracker(newFakeStore())
	_, err := tr.Report(context.Background(), "u1", 99, 10)
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestReportValidation(t *testing.T) {
	tr := NewTracker(newFakeStore(Video{ID: 1, DurationSec: 10}))
	ctx := context.Background()

	if _, err := tr.Report(ctx, "", 1, 5); !errs.IsValidation(err) {
		t.Fatalf("missing user should be a validation error, got %v", err)
	}
	if _, err := tr.Report(ctx, "u1", 1, -3); !errs.IsValidation(err) {
		t.Fatalf("negative seconds should be a validation error, got %v", err)
	}
}

func TestConfigurableThreshold(t *testing.T) {
	store := newFakeStore(Video{ID: 1, CourseID: 1, Position: 1, DurationSec: 100})
	tr := NewTracker(store, WithCompletionSlack(10), WithCompletionRatio(0.8))

	// threshold = max(90, 80) = 90
	if got := tr.CompletionThreshold(100); got != 90 {
		t.Fatalf("threshold = %v, want 90", got)
	}
	rec, err := tr.Report(context.Background(), "u1", 1, 90)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !rec.Completed {
		t.Fatalf("90s should complete with the overridden threshold")
	}
}
