// Package evaluate grades learner responses to in-video interactive
// elements. Evaluation is pure: it takes a minimal element view plus the
// submitted response and returns a verdict. Ungradeable input (missing
// answer key, wrong payload shape) yields an incorrect verdict with a
// diagnostic explanation; it never fails the request.
package evaluate

import (
	"strings"
)

// ElementType is the closed set of supported interaction types.
type ElementType string

const (
	TypeMultipleChoice ElementType = "multiple_choice"
	TypeFillBlank      ElementType = "fill_blank"
	TypeDragDrop       ElementType = "drag_drop"
	TypeTextEntry      ElementType = "text_entry"
	TypeClickPoint     ElementType = "click_point"
	TypeRating         ElementType = "rating"
	TypePoll           ElementType = "poll"
)

// Known reports whether t is one of the supported element types.
func Known(t ElementType) bool {
	switch t {
	case TypeMultipleChoice, TypeFillBlank, TypeDragDrop,
		TypeTextEntry, TypeClickPoint, TypeRating, TypePoll:
		return true
	}
	return false
}

// Choice is one selectable option of a choice-style element.
type Choice struct {
	ID          int64
	Correct     bool
	Explanation string
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a minimal view of an interactive element needed for grading.
// Keep this in sync with whatever fields the registry stores.
type Element struct {
	Type         ElementType
	Points       int
	TimeLimitSec int

	Choices []Choice // choice-style types

	TextAnswer string // text_entry; empty means ungraded free text

	Targets        []Point // click_point
	ToleranceUnits float64 // 0 = evaluator default
	PassPercent    float64 // 0 = evaluator default
}

// Response is a learner submission, decoded from the request payload.
// Which field is meaningful depends on the element type.
type Response struct {
	SelectedOptions []int64 `json:"selected_options,omitempty"`
	Text            string  `json:"text,omitempty"`
	ClickedPoints   []Point `json:"clicked_points,omitempty"`
}

// Empty reports whether the submission carries no answer at all.
func (r Response) Empty() bool {
	return len(r.SelectedOptions) == 0 && strings.TrimSpace(r.Text) == "" && len(r.ClickedPoints) == 0
}

// Verdict is the outcome of evaluating a single response.
type Verdict struct {
	Correct     bool           `json:"correct"`
	Explanation string         `json:"explanation"`
	Details     map[string]any `json:"details,omitempty"`
}

// Strategy evaluates a single element type.
type Strategy interface {
	Evaluate(el Element, resp Response) Verdict
}

// Evaluator routes by element type to the correct Strategy.
type Evaluator struct {
	strategies map[ElementType]Strategy
}

// Option configures the evaluator defaults.
type Option func(*config)

type config struct {
	ClickTolerance   float64
	ClickPassPercent float64
}

func WithClickTolerance(units float64) Option {
	return func(c *config) { c.ClickTolerance = units }
}

func WithClickPassPercent(pct float64) Option {
	return func(c *config) { c.ClickPassPercent = pct }
}

// New installs built-in strategies.
func New(opts ...Option) *Evaluator {
	cfg := &config{
		ClickTolerance:   20,
		ClickPassPercent: 70,
	}
	for _, o := range opts {
		o(cfg)
	}
	choice := choiceStrategy{}
	return &Evaluator{
		strategies: map[ElementType]Strategy{
			TypeMultipleChoice: choice,
			TypeFillBlank:      choice,
			TypeDragDrop:       choice,
			TypeTextEntry:      textEntryStrategy{},
			TypeClickPoint:     clickPointStrategy{tolerance: cfg.ClickTolerance, passPercent: cfg.ClickPassPercent},
			TypeRating:         surveyStrategy{},
			TypePoll:           surveyStrategy{},
		},
	}
}

func (e *Evaluator) Evaluate(el Element, resp Response) Verdict {
	s, ok := e.strategies[el.Type]
	if !ok {
		return Verdict{Explanation: "unsupported type"}
	}
	return s.Evaluate(el, resp)
}

// --- Strategies ---

// choiceStrategy handles multiple_choice, fill_blank and drag_drop: the
// submitted option-ID set must exactly equal the set flagged correct.
type choiceStrategy struct{}

func (choiceStrategy) Evaluate(el Element, resp Response) Verdict {
	correct := make(map[int64]struct{})
	for _, c := range el.Choices {
		if c.Correct {
			correct[c.ID] = struct{}{}
		}
	}
	if len(correct) == 0 {
		return Verdict{Explanation: "element has no answer key configured"}
	}
	if len(resp.SelectedOptions) == 0 {
		return Verdict{Explanation: "no option selected"}
	}

	selected := make(map[int64]struct{}, len(resp.SelectedOptions))
	for _, id := range resp.SelectedOptions {
		selected[id] = struct{}{}
	}

	ok := len(selected) == len(correct)
	if ok {
		for id := range correct {
			if _, hit := selected[id]; !hit {
				ok = false
				break
			}
		}
	}

	// Aggregate the explanation text of every selected option that has one.
	var notes []string
	for _, c := range el.Choices {
		if _, hit := selected[c.ID]; hit && c.Explanation != "" {
			notes = append(notes, c.Explanation)
		}
	}
	explanation := strings.Join(notes, " ")
	if explanation == "" {
		if ok {
			explanation = "correct selection"
		} else {
			explanation = "incorrect selection"
		}
	}

	return Verdict{
		Correct:     ok,
		Explanation: explanation,
		Details: map[string]any{
			"correct_options":  keys(correct),
			"selected_options": resp.SelectedOptions,
		},
	}
}

// textEntryStrategy compares normalized text. Elements without a configured
// answer collect ungraded free text: any non-empty submission passes.
type textEntryStrategy struct{}

func (textEntryStrategy) Evaluate(el Element, resp Response) Verdict {
	submitted := strings.TrimSpace(resp.Text)
	if el.TextAnswer == "" {
		if submitted == "" {
			return Verdict{Explanation: "a response is required"}
		}
		return Verdict{Correct: true, Explanation: "response recorded"}
	}
	if submitted == "" {
		return Verdict{Explanation: "a response is required"}
	}
	ok := normalizeText(submitted) == normalizeText(el.TextAnswer)
	explanation := "correct answer"
	if !ok {
		explanation = "incorrect answer"
	}
	return Verdict{
		Correct:     ok,
		Explanation: explanation,
		Details: map[string]any{
			"submitted": submitted,
		},
	}
}

// surveyStrategy accepts rating and poll responses unconditionally.
type surveyStrategy struct{}

func (surveyStrategy) Evaluate(Element, Response) Verdict {
	return Verdict{Correct: true, Explanation: "response recorded"}
}

func keys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
