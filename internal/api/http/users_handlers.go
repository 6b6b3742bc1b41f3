package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidlearn/vidlearn-lms/internal/errs"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=learner instructor"`
}

// RegisterHandler creates an account. Self-registration is learner-only;
// instructor accounts require the admin to set the role explicitly.
func RegisterHandler(db *sql.DB, allowRole bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, errs.Validation("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation("invalid registration: %v", err))
			return
		}
		role := "learner"
		if allowRole && req.Role != "" {
			role = req.Role
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeErr(w, errs.Internal("hash password", err))
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			id, req.Username, string(hash), role, time.Now().Unix(),
		)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				writeErr(w, errs.Conflict("username already taken"))
				return
			}
			writeErr(w, errs.Internal("create user", err))
			return
		}
		respond(w, http.StatusCreated, map[string]string{"id": id, "username": req.Username, "role": role})
	}
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id, username, role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id, username, role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			writeErr(w, errs.Internal("list users", err))
			return
		}
		defer rows.Close()
		out := []map[string]string{}
		for rows.Next() {
			var id, u, ro string
			if err := rows.Scan(&id, &u, &ro); err != nil {
				writeErr(w, errs.Internal("scan user", err))
				return
			}
			out = append(out, map[string]string{"id": id, "username": u, "role": ro})
		}
		respond(w, http.StatusOK, out)
	}
}
