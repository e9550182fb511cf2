package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/campus-forge/ipd-portal/internal/api/http"
	"github.com/campus-forge/ipd-portal/internal/audit"
	auth "github.com/campus-forge/ipd-portal/internal/auth/middleware"
	"github.com/campus-forge/ipd-portal/internal/config"
	"github.com/campus-forge/ipd-portal/internal/db"
	"github.com/campus-forge/ipd-portal/internal/evaluation"
	"github.com/campus-forge/ipd-portal/internal/project"
	"github.com/campus-forge/ipd-portal/internal/rbac"
	"github.com/campus-forge/ipd-portal/internal/xlsximport"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	evals := evaluation.NewSQLStore(dbh)
	projects := project.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)
	importer := xlsximport.New(projects, evals, time.Now)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.AllowClaimRoleFallback))

		pr.With(rbac.Require("team:create")).
			Post("/teams", api.CreateTeamHandler(projects))

		pr.With(rbac.Require("project:create")).
			Post("/projects", api.CreateProjectHandler(projects))
		pr.With(rbac.Require("project:view")).
			Get("/projects", api.ListProjectsHandler(projects))
		pr.With(rbac.Require("project:view")).
			Get("/projects/{projectID}", api.GetProjectHandler(projects))

		pr.With(rbac.Require("evaluation:create")).
			Post("/evaluations", api.CreateEvaluationHandler(evals, projects, events))
		pr.With(rbac.Require("evaluation:import")).
			Post("/evaluations/import", api.ImportEvaluationsHandler(importer, events, cfg.ImportMaxBytes))
		pr.With(rbac.Require("evaluation:view")).
			Get("/evaluations", api.ListEvaluationsHandler(evals))
		pr.With(rbac.Require("evaluation:view")).
			Get("/evaluations/{evaluationID}", api.GetEvaluationHandler(evals))
		pr.With(rbac.RequireAny("evaluation:submit-faculty", "evaluation:submit-reviewer")).
			Post("/evaluations/{evaluationID}/scores", api.SubmitScoresHandler(evals, events))
		pr.With(rbac.Require("evaluation:audit")).
			Get("/evaluations/{evaluationID}/events", api.EvaluationEventsHandler(events))

		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
