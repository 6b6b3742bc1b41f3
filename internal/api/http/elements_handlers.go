package http

import (
	"encoding/json"
	"net/http"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
	"github.com/vidlearn/vidlearn-lms/internal/interaction"
	"github.com/vidlearn/vidlearn-lms/internal/rbac"
)

type elementRequest struct {
	VideoID       int64           `json:"video_id" validate:"required,gt=0"`
	Type          string          `json:"type" validate:"required"`
	Title         string          `json:"title" validate:"required,max=300"`
	Description   string          `json:"description" validate:"max=2000"`
	ActivateAtSec float64         `json:"activate_at_sec" validate:"gte=0"`
	Mandatory     bool            `json:"mandatory"`
	Points        int             `json:"points" validate:"gte=0"`
	TimeLimitSec  int             `json:"time_limit_sec" validate:"gte=0"`
	Config        json.RawMessage `json:"config"`
	Options       []struct {
		Label       string `json:"label" validate:"required,max=500"`
		Correct     bool   `json:"correct"`
		Explanation string `json:"explanation" validate:"max=2000"`
		Position    int    `json:"position"`
	} `json:"options" validate:"dive"`
}

func CreateElementHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req elementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation("invalid element: %v", err))
			return
		}
		typ := evaluate.ElementType(req.Type)
		cfg, err := interaction.ParseConfig(typ, req.Config)
		if err != nil {
			writeErr(w, err)
			return
		}
		points := req.Points
		if points == 0 {
			points = evaluate.DefaultScoringPolicy().BasePoints
		}
		el := interaction.Element{
			VideoID:       req.VideoID,
			Type:          typ,
			Title:         req.Title,
			Description:   req.Description,
			ActivateAtSec: req.ActivateAtSec,
			Mandatory:     req.Mandatory,
			Points:        points,
			TimeLimitSec:  req.TimeLimitSec,
			Config:        cfg,
		}
		for i, opt := range req.Options {
			pos := opt.Position
			if pos == 0 {
				pos = i + 1
			}
			// Poll options have no wrong answer; every choice counts.
			correct := opt.Correct || typ == evaluate.TypePoll
			el.Options = append(el.Options, interaction.ElementOption{
				Label:       opt.Label,
				Correct:     correct,
				Explanation: opt.Explanation,
				Position:    pos,
			})
		}
		created, err := store.CreateElement(r.Context(), el)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusCreated, created)
	}
}

func GetElementHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		el, err := store.GetElement(r.Context(), id)
		if err != nil || !el.Active {
			if err == nil {
				err = errs.NotFound("element not found")
			}
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, viewFor(r, el))
	}
}

func ListElementsHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID, err := pathID(r, "videoID")
		if err != nil {
			writeErr(w, err)
			return
		}
		elements, err := store.ListByVideo(r.Context(), videoID)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]any, 0, len(elements))
		for _, el := range elements {
			out = append(out, viewFor(r, el))
		}
		respond(w, http.StatusOK, out)
	}
}

func UpdateElementHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			interaction.ElementUpdate
			Config json.RawMessage `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		upd := req.ElementUpdate
		if len(req.Config) > 0 {
			el, err := store.GetElement(r.Context(), id)
			if err != nil {
				writeErr(w, err)
				return
			}
			cfg, err := interaction.ParseConfig(el.Type, req.Config)
			if err != nil {
				writeErr(w, err)
				return
			}
			upd.Config = cfg
		}
		if err := store.UpdateElement(r.Context(), id, upd); err != nil {
			writeErr(w, err)
			return
		}
		el, err := store.GetElement(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusOK, el)
	}
}

// DeactivateElementHandler soft-deletes: the element stops appearing in
// listings and in the gate, but its attempts stay on record.
func DeactivateElementHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeactivateElement(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusNoContent, nil)
	}
}

func DeleteElementHandler(store interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "elementID")
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteElement(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		respond(w, http.StatusNoContent, nil)
	}
}

// learnerOption is an option row with its answer key stripped.
type learnerOption struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// learnerElement is what the player renders: the full prompt but with no
// correct flags, explanations, or grading configuration.
type learnerElement struct {
	ID            int64           `json:"id"`
	VideoID       int64           `json:"video_id"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	ActivateAtSec float64         `json:"activate_at_sec"`
	Mandatory     bool            `json:"mandatory"`
	Points        int             `json:"points"`
	TimeLimitSec  int             `json:"time_limit_sec,omitempty"`
	Options       []learnerOption `json:"options,omitempty"`
}

var checker = rbac.NewChecker(nil)

// viewFor strips the answer key unless the caller may see it.
func viewFor(r *http.Request, el interaction.Element) any {
	role := rbac.RoleFromContext(r.Context())
	if checker.Has(role, "element:view-key") {
		return el
	}
	out := learnerElement{
		ID:            el.ID,
		VideoID:       el.VideoID,
		Type:          string(el.Type),
		Title:         el.Title,
		Description:   el.Description,
		ActivateAtSec: el.ActivateAtSec,
		Mandatory:     el.Mandatory,
		Points:        el.Points,
		TimeLimitSec:  el.TimeLimitSec,
	}
	for _, opt := range el.Options {
		out.Options = append(out.Options, learnerOption{ID: opt.ID, Label: opt.Label, Position: opt.Position})
	}
	return out
}
