package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/vidlearn/vidlearn-lms/internal/api/http"
	auth "github.com/vidlearn/vidlearn-lms/internal/auth/middleware"
	"github.com/vidlearn/vidlearn-lms/internal/config"
	"github.com/vidlearn/vidlearn-lms/internal/db"
	"github.com/vidlearn/vidlearn-lms/internal/evaluate"
	"github.com/vidlearn/vidlearn-lms/internal/interaction"
	"github.com/vidlearn/vidlearn-lms/internal/progress"
	"github.com/vidlearn/vidlearn-lms/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	watchStore := progress.NewSQLStore(dbh, cfg.DBDriver)
	elemStore := interaction.NewSQLStore(dbh, cfg.DBDriver)

	tracker := progress.NewTracker(watchStore,
		progress.WithCompletionSlack(cfg.CompletionSlackSec),
		progress.WithCompletionRatio(cfg.CompletionRatio),
	)
	accessGate := progress.NewAccessGate(watchStore)

	evaluator := evaluate.New(
		evaluate.WithClickTolerance(cfg.ClickToleranceUnits),
		evaluate.WithClickPassPercent(cfg.ClickPassPercent),
	)
	svc := interaction.NewService(elemStore, evaluator, evaluate.DefaultScoringPolicy())
	gate := interaction.NewGate(elemStore)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Post("/auth/register", api.RegisterHandler(dbh, false))

	// Protected API (JWT → subject + role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Videos
		pr.With(rbac.Require("video:create")).
			Post("/videos", api.CreateVideoHandler(watchStore))
		pr.With(rbac.Require("video:view")).
			Get("/videos/{videoID}", api.GetVideoHandler(watchStore, accessGate))
		pr.With(rbac.Require("video:view")).
			Get("/videos/{videoID}/access", api.CheckAccessHandler(accessGate))

		// Watch progress
		pr.With(rbac.Require("progress:view-own")).
			Post("/videos/{videoID}/progress", api.ReportProgressHandler(tracker))
		pr.With(rbac.Require("progress:view-own")).
			Get("/videos/{videoID}/progress", api.GetWatchProgressHandler(watchStore))
		pr.With(rbac.Require("progress:view-own")).
			Get("/progress", api.ListWatchProgressHandler(watchStore))
		pr.With(rbac.Require("progress:reset-own")).
			Delete("/videos/{videoID}/progress", api.ResetProgressHandler(watchStore, elemStore))

		// Interactive elements
		pr.With(rbac.Require("element:create")).
			Post("/elements", api.CreateElementHandler(elemStore))
		pr.With(rbac.Require("element:view")).
			Get("/elements/{elementID}", api.GetElementHandler(elemStore))
		pr.With(rbac.Require("element:view")).
			Get("/videos/{videoID}/elements", api.ListElementsHandler(elemStore))
		pr.With(rbac.Require("element:update")).
			Patch("/elements/{elementID}", api.UpdateElementHandler(elemStore))
		pr.With(rbac.Require("element:update")).
			Post("/elements/{elementID}/deactivate", api.DeactivateElementHandler(elemStore))
		pr.With(rbac.Require("element:delete")).
			Delete("/elements/{elementID}", api.DeleteElementHandler(elemStore))

		// Responses and the mandatory gate
		pr.With(rbac.Require("response:submit")).
			Post("/elements/{elementID}/responses", api.SubmitResponseHandler(svc))
		pr.With(rbac.Require("element:view")).
			Get("/videos/{videoID}/gate", api.GateCheckHandler(gate))
		pr.With(rbac.Require("element:view")).
			Get("/videos/{videoID}/next-element", api.NextElementHandler(svc))

		// Stats
		pr.With(rbac.Require("progress:view-own")).
			Get("/videos/{videoID}/element-progress", api.VideoProgressHandler(svc))
		pr.With(rbac.Require("stats:view")).
			Get("/elements/{elementID}/stats", api.ElementStatsHandler(elemStore))
		pr.With(rbac.Require("stats:view")).
			Get("/videos/{videoID}/ranking", api.RankingHandler(elemStore))

		// Users (admin)
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:create")).
			Post("/users", api.RegisterHandler(dbh, true))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin upserts the bootstrap admin account when a password hash is
// configured. Without it the instance starts with no admin, which is fine
// for development against self-registered learners.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx, `
INSERT INTO users (id, username, password_hash, role, created_at)
VALUES ($1, $2, $3, 'admin', $4)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = 'admin'`,
		"admin-"+cfg.AdminUser, cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix(),
	)
	return err
}
