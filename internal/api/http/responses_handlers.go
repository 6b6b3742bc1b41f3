package http

import (
	"encoding/json"
	"net/http"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
	"github.com/vidlearn/vidlearn-lms/internal/interaction"

	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
)

// SubmitResponseHandler grades a submission and records the attempt. The
// response tells the player the verdict and whether it must seek backward.
func SubmitResponseHandler(svc *interaction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elementID, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			SelectedOptions []int64          `json:"selected_options,omitempty"`
			Text            string           `json:"text,omitempty"`
			ClickedPoints   []evaluate.Point `json:"clicked_points,omitempty"`
			LatencySec      float64          `json:"latency_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		resp := evaluate.Response{
			SelectedOptions: req.SelectedOptions,
			Text:            req.Text,
			ClickedPoints:   req.ClickedPoints,
		}
		res, err := svc.SubmitResponse(r.Context(), auth.SubjectFromContext(r.Context()), elementID, resp, req.LatencySec)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusCreated, res)
	}
}
