package interaction

import (
	"encoding/json"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

// Config is the per-type answer-key payload of an element. One variant per
// element type; the stored JSON is parsed and validated here, at the
// boundary, so the evaluation core never sees an untyped blob.
type Config interface{ isConfig() }

// ChoiceConfig covers multiple_choice, fill_blank and drag_drop. The
// answer key lives in the element's option rows, so there is nothing else
// to configure.
type ChoiceConfig struct{}

// TextEntryConfig holds the expected answer; empty means ungraded free text.
type TextEntryConfig struct {
	Answer string `json:"answer,omitempty"`
}

// ClickPointConfig holds target coordinates plus optional overrides for
// the hit tolerance and pass threshold.
type ClickPointConfig struct {
	Targets     []evaluate.Point `json:"targets"`
	Tolerance   float64          `json:"tolerance,omitempty"`
	PassPercent float64          `json:"pass_percent,omitempty"`
}

// SurveyConfig covers rating and poll; there is no right answer.
type SurveyConfig struct{}

func (ChoiceConfig) isConfig()     {}
func (TextEntryConfig) isConfig()  {}
func (ClickPointConfig) isConfig() {}
func (SurveyConfig) isConfig()     {}

// ParseConfig decodes the stored payload for the given element type.
func ParseConfig(t evaluate.ElementType, raw []byte) (Config, error) {
	if !evaluate.Known(t) {
		return nil, errs.Validation("unknown element type %q", t)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch t {
	case evaluate.TypeTextEntry:
		var c TextEntryConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, errs.Validation("invalid text-entry configuration: %v", err)
		}
		return c, nil
	case evaluate.TypeClickPoint:
		var c ClickPointConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, errs.Validation("invalid click-point configuration: %v", err)
		}
		if c.Tolerance < 0 || c.PassPercent < 0 || c.PassPercent > 100 {
			return nil, errs.Validation("click-point tolerance/threshold out of range")
		}
		return c, nil
	case evaluate.TypeRating, evaluate.TypePoll:
		return SurveyConfig{}, nil
	default:
		return ChoiceConfig{}, nil
	}
}

// MarshalConfig is the inverse of ParseConfig for storage.
func MarshalConfig(c Config) ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// EvalView projects an element onto the minimal view the evaluator grades.
func EvalView(el Element) evaluate.Element {
	view := evaluate.Element{
		Type:         el.Type,
		Points:       el.Points,
		TimeLimitSec: el.TimeLimitSec,
	}
	for _, opt := range el.Options {
		view.Choices = append(view.Choices, evaluate.Choice{
			ID:          opt.ID,
			Correct:     opt.Correct,
			Explanation: opt.Explanation,
		})
	}
	switch c := el.Config.(type) {
	case TextEntryConfig:
		view.TextAnswer = c.Answer
	case ClickPointConfig:
		view.Targets = c.Targets
		view.ToleranceUnits = c.Tolerance
		view.PassPercent = c.PassPercent
	}
	return view
}
