package http

import (
	"encoding/json"
	"net/http"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/interaction"
	"github.com/vidlearn/vidlearn-lms/internal/progress"

	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
)

// ReportProgressHandler records a watched-seconds heartbeat from the
// player and returns the stored state, including the completion flag.
func ReportProgressHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			SecondsWatched float64 `json:"seconds_watched"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		rec, err := tracker.Report(r.Context(), auth.SubjectFromContext(r.Context()), videoID, req.SecondsWatched)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, rec)
	}
}

func GetWatchProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		rec, err := store.GetWatchProgress(r.Context(), auth.SubjectFromContext(r.Context()), videoID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if rec == nil {
			writeErr(w, errs.NotFound("no progress recorded"))
			return
		}
		respond(w, http.StatusOK, rec)
	}
}

func ListWatchProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.ListWatchProgress(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		if recs == nil {
			recs = []progress.WatchProgress{}
		}
		respond(w, http.StatusOK, recs)
	}
}

// ResetProgressHandler wipes a learner's state for one video: watched
// seconds, completion, and every recorded attempt.
func ResetProgressHandler(watch progress.Store, attempts interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		userID := auth.SubjectFromContext(r.Context())
		removed, err := attempts.ResetProgress(r.Context(), userID, videoID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := watch.ResetWatchProgress(r.Context(), userID, videoID); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, map[string]bool{"attempts_removed": removed})
	}
}
