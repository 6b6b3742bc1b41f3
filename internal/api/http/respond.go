// Package http holds the gateway's HTTP handlers. Handlers are closures
// over their dependencies and are mounted onto a chi router by cmd/gateway.
package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
)

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeErr maps the internal error taxonomy onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindConflict:
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		msg = "internal error"
	}
	respond(w, status, map[string]string{"error": msg})
}
