package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/progress"
	"github.com/vidlearn/vidlearn-lms/internal/rbac"

	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
)

var validate = validator.New()

type videoRequest struct {
	CourseID    int64   `json:"course_id" validate:"required,gt=0"`
	ModuleID    int64   `json:"module_id" validate:"required,gt=0"`
	Position    int     `json:"position" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=300"`
	DurationSec float64 `json:"duration_sec" validate:"required,gt=0"`
}

func CreateVideoHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req videoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation("invalid video: %v", err))
			return
		}
		v, err := store.PutVideo(r.Context(), progress.Video{
			CourseID:    req.CourseID,
			ModuleID:    req.ModuleID,
			Position:    req.Position,
			Title:       req.Title,
			DurationSec: req.DurationSec,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusCreated, v)
	}
}

// GetVideoHandler enforces sequential access for learners: the video is
// only returned when every earlier video in the course is completed.
// Instructors and admins bypass the gate.
func GetVideoHandler(store progress.Store, gate *progress.AccessGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		if rbac.RoleFromContext(r.Context()) != "learner" {
			v, err := store.GetVideo(r.Context(), id)
			if err != nil {
				writeErr(w, err)
				return
			}
			respond(w, http.StatusOK, v)
			return
		}
		decision, v, err := gate.Check(r.Context(), auth.SubjectFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !decision.Allowed {
			respond(w, http.StatusForbidden, decision)
			return
		}
		respond(w, http.StatusOK, v)
	}
}

// CheckAccessHandler exposes the sequential gate decision without the
// video payload, so the player can grey out locked entries.
func CheckAccessHandler(gate *progress.AccessGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		decision, _, err := gate.Check(r.Context(), auth.SubjectFromContext(r.Context()), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, decision)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid %s", name)
	}
	return id, nil
}
