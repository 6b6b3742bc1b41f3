package http

import (
	"net/http"
	"strconv"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/interaction"

	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
)

// GateCheckHandler answers whether the player may continue past ?t=
// seconds, and where to rewind to when it may not.
func GateCheckHandler(gate *interaction.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		t, err := querySeconds(r, "t")
		if err != nil {
			writeErr(w, err)
			return
		}
		res, err := gate.Check(r.Context(), auth.SubjectFromContext(r.Context()), videoID, t)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, res)
	}
}

// NextElementHandler returns the next upcoming element after ?t= seconds,
// so the player can schedule its pause, or 204 when none is left.
func NextElementHandler(svc *interaction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		t, err := querySeconds(r, "t")
		if err != nil {
			writeErr(w, err)
			return
		}
		next, err := svc.NextElement(r.Context(), videoID, t)
		if err != nil {
			writeErr(w, err)
			return
		}
		if next == nil {
			respond(w, http.StatusNoContent, nil)
			return
		}
		respond(w, http.StatusOK, next)
	}
}

func querySeconds(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errs.Validation("invalid %s", name)
	}
	return v, nil
}
