package http

import (
	"net/http"
	"strconv"

	"github.com/vidlearn/vidlearn-lms/internal/interaction"

	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
)

// VideoProgressHandler lists a learner's per-element state (latest attempt
// per element) plus aggregate totals for one video.
func VideoProgressHandler(svc *interaction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		items, summary, err := svc.Progress(r.Context(), auth.SubjectFromContext(r.Context()), videoID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if items == nil {
			items = []interaction.ElementProgress{}
		}
		respond(w, http.StatusOK, map[string]any{
			"elements": items,
			"summary":  summary,
		})
	}
}

func ElementStatsHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		stats, err := store.ElementStats(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, stats)
	}
}

func RankingHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		entries, err := store.Ranking(r.Context(), videoID, limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		if entries == nil {
			entries = []interaction.RankingEntry{}
		}
		respond(w, http.StatusOK, entries)
	}
}
