package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func choiceElement(t ElementType) Element {
	return Element{
		Type: t,
		Choices: []Choice{
			{ID: 5, Correct: true, Explanation: "five is right"},
			{ID: 7, Correct: true},
			{ID: 9, Correct: false, Explanation: "nine is a distractor"},
		},
	}
}

func TestChoiceSetEquality(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		selected []int64
		want     bool
	}{
		{"exact match", []int64{5, 7}, true},
		{"exact match reordered", []int64{7, 5}, true},
		{"subset", []int64{5}, false},
		{"superset", []int64{5, 7, 9}, false},
		{"disjoint", []int64{9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Evaluate(choiceElement(TypeMultipleChoice), Response{SelectedOptions: tt.selected})
			assert.Equal(t, tt.want, v.Correct)
		})
	}

	// fill_blank and drag_drop share the same evaluation shape
	for _, typ := range []ElementType{TypeFillBlank, TypeDragDrop} {
		v := e.Evaluate(choiceElement(typ), Response{SelectedOptions: []int64{5, 7}})
		assert.True(t, v.Correct, string(typ))
	}
}

func TestChoiceExplanationAggregation(t *testing.T) {
	e := New()
	v := e.Evaluate(choiceElement(TypeMultipleChoice), Response{SelectedOptions: []int64{5, 9}})
	assert.False(t, v.Correct)
	assert.Contains(t, v.Explanation, "five is right")
	assert.Contains(t, v.Explanation, "nine is a distractor")
}

func TestChoiceDegradedInput(t *testing.T) {
	e := New()

	v := e.Evaluate(Element{Type: TypeMultipleChoice}, Response{SelectedOptions: []int64{1}})
	assert.False(t, v.Correct)
	assert.Equal(t, "element has no answer key configured", v.Explanation)

	v = e.Evaluate(choiceElement(TypeMultipleChoice), Response{})
	assert.False(t, v.Correct)
	assert.Equal(t, "no option selected", v.Explanation)
}

func TestTextEntry(t *testing.T) {
	e := New()
	el := Element{Type: TypeTextEntry, TextAnswer: "Paris"}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact", "Paris", true},
		{"padded lowercase", "  paris  ", true},
		{"internal whitespace collapsed", "pa ris", false},
		{"wrong answer", "London", false},
		{"empty", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Evaluate(el, Response{Text: tt.text})
			assert.Equal(t, tt.want, v.Correct)
		})
	}

	multi := Element{Type: TypeTextEntry, TextAnswer: "New   York"}
	v := e.Evaluate(multi, Response{Text: "new york"})
	assert.True(t, v.Correct, "whitespace in the key collapses too")
}

func TestTextEntryUngraded(t *testing.T) {
	e := New()
	el := Element{Type: TypeTextEntry} // no answer configured

	assert.True(t, e.Evaluate(el, Response{Text: "any opinion"}).Correct)
	assert.False(t, e.Evaluate(el, Response{Text: ""}).Correct)
}

func TestClickPoint(t *testing.T) {
	e := New()
	el := Element{
		Type:    TypeClickPoint,
		Targets: []Point{{X: 0, Y: 0}, {X: 100, Y: 100}},
	}

	// one of two targets matched: 50% < 70% threshold
	v := e.Evaluate(el, Response{ClickedPoints: []Point{{X: 5, Y: 5}}})
	assert.False(t, v.Correct)
	assert.Equal(t, "1/2 points identified correctly", v.Explanation)

	// both matched, within default tolerance 20
	v = e.Evaluate(el, Response{ClickedPoints: []Point{{X: 10, Y: 10}, {X: 95, Y: 110}}})
	assert.True(t, v.Correct)

	// just outside tolerance
	v = e.Evaluate(el, Response{ClickedPoints: []Point{{X: 15, Y: 15}, {X: 100, Y: 121}}})
	assert.False(t, v.Correct)
}

func TestClickPointElementOverrides(t *testing.T) {
	e := New()
	el := Element{
		Type:           TypeClickPoint,
		Targets:        []Point{{X: 0, Y: 0}, {X: 100, Y: 100}},
		ToleranceUnits: 5,
		PassPercent:    50,
	}

	// one hit out of two passes the 50% override
	v := e.Evaluate(el, Response{ClickedPoints: []Point{{X: 3, Y: 4}}})
	assert.True(t, v.Correct)

	// default tolerance would match, the 5-unit override does not
	v = e.Evaluate(el, Response{ClickedPoints: []Point{{X: 10, Y: 10}}})
	assert.False(t, v.Correct)
}

func TestClickPointDegradedInput(t *testing.T) {
	e := New()

	v := e.Evaluate(Element{Type: TypeClickPoint}, Response{ClickedPoints: []Point{{X: 1, Y: 1}}})
	assert.False(t, v.Correct)
	assert.Equal(t, "element has no target points configured", v.Explanation)
}

func TestSurveyTypesAlwaysAccepted(t *testing.T) {
	e := New()
	for _, typ := range []ElementType{TypeRating, TypePoll} {
		v := e.Evaluate(Element{Type: typ}, Response{SelectedOptions: []int64{3}})
		assert.True(t, v.Correct, string(typ))

		v = e.Evaluate(Element{Type: typ}, Response{Text: "loved it"})
		assert.True(t, v.Correct, string(typ))

		v = e.Evaluate(Element{Type: typ}, Response{})
		assert.True(t, v.Correct, string(typ))
	}
}

func TestUnsupportedType(t *testing.T) {
	e := New()
	v := e.Evaluate(Element{Type: "hologram"}, Response{Text: "x"})
	assert.False(t, v.Correct)
	assert.Equal(t, "unsupported type", v.Explanation)
}
