package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidlearn/vidlearn-lms/internal/interaction"
)

// stubElementStore captures the element handed to CreateElement; the
// embedded interface covers the methods this test never reaches.
type stubElementStore struct {
	interaction.Store
	created interaction.Element
}

func (s *stubElementStore) CreateElement(_ context.Context, el interaction.Element) (interaction.Element, error) {
	el.ID = 1
	el.Active = true
	s.created = el
	return el, nil
}

func postElement(t *testing.T, store interaction.Store, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/elements", strings.NewReader(body))
	w := httptest.NewRecorder()
	CreateElementHandler(store)(w, req)
	return w
}

func TestCreateElementPollOptionsForcedCorrect(t *testing.T) {
	store := &stubElementStore{}
	w := postElement(t, store, `{
		"video_id": 1,
		"type": "poll",
		"title": "favorite topic",
		"options": [{"label": "a"}, {"label": "b", "correct": false}]
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	if assert.Len(t, store.created.Options, 2) {
		for _, opt := range store.created.Options {
			assert.True(t, opt.Correct, opt.Label)
		}
	}
}

func TestCreateElementChoiceOptionsKeepFlags(t *testing.T) {
	store := &stubElementStore{}
	w := postElement(t, store, `{
		"video_id": 1,
		"type": "multiple_choice",
		"title": "capital of france",
		"options": [{"label": "paris", "correct": true}, {"label": "lyon"}]
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	if assert.Len(t, store.created.Options, 2) {
		assert.True(t, store.created.Options[0].Correct)
		assert.False(t, store.created.Options[1].Correct)
	}
}

func TestCreateElementRejectsUnknownType(t *testing.T) {
	w := postElement(t, &stubElementStore{}, `{
		"video_id": 1,
		"type": "hologram",
		"title": "x",
		"options": []
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
