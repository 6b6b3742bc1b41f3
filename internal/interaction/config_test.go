package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     evaluate.ElementType
		raw     string
		want    Config
		wantErr bool
	}{
		{name: "choice empty payload", typ: evaluate.TypeMultipleChoice, raw: "", want: ChoiceConfig{}},
		{name: "drag drop shares choice config", typ: evaluate.TypeDragDrop, raw: "{}", want: ChoiceConfig{}},
		{name: "text entry", typ: evaluate.TypeTextEntry, raw: `{"answer":"Paris"}`, want: TextEntryConfig{Answer: "Paris"}},
		{
			name: "click point",
			typ:  evaluate.TypeClickPoint,
			raw:  `{"targets":[{"x":10,"y":20}],"tolerance":15,"pass_percent":80}`,
			want: ClickPointConfig{Targets: []evaluate.Point{{X: 10, Y: 20}}, Tolerance: 15, PassPercent: 80},
		},
		{name: "rating has no key", typ: evaluate.TypeRating, raw: `{"scale":5}`, want: SurveyConfig{}},
		{name: "unknown type", typ: "essay", raw: "{}", wantErr: true},
		{name: "malformed json", typ: evaluate.TypeTextEntry, raw: `{"answer":`, wantErr: true},
		{name: "negative tolerance", typ: evaluate.TypeClickPoint, raw: `{"tolerance":-1}`, wantErr: true},
		{name: "pass percent over 100", typ: evaluate.TypeClickPoint, raw: `{"pass_percent":150}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseConfig(tc.typ, []byte(tc.raw))
			if tc.wantErr {
				assert.True(t, errs.IsValidation(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMarshalConfigNil(t *testing.T) {
	raw, err := MarshalConfig(nil)
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestEvalViewProjection(t *testing.T) {
	el := Element{
		Type:         evaluate.TypeClickPoint,
		Points:       20,
		TimeLimitSec: 60,
		Config:       ClickPointConfig{Targets: []evaluate.Point{{X: 1, Y: 2}}, Tolerance: 5, PassPercent: 50},
	}
	view := EvalView(el)
	assert.Equal(t, 20, view.Points)
	assert.Equal(t, 60, view.TimeLimitSec)
	assert.Equal(t, 5.0, view.ToleranceUnits)
	assert.Equal(t, 50.0, view.PassPercent)
	assert.Len(t, view.Targets, 1)

	// an unparseable stored config leaves Config nil; the view then has no
	// answer key and evaluation degrades to an incorrect verdict.
	view = EvalView(Element{Type: evaluate.TypeTextEntry})
	assert.Empty(t, view.TextAnswer)
}
