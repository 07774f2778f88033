package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/exam-pulse/exampulse-lms/internal/api/http"
	auth "github.com/exam-pulse/exampulse-lms/internal/auth/middleware"
	"github.com/exam-pulse/exampulse-lms/internal/config"
	"github.com/exam-pulse/exampulse-lms/internal/db"
	"github.com/exam-pulse/exampulse-lms/internal/exam"
	"github.com/exam-pulse/exampulse-lms/internal/rbac"
	"github.com/exam-pulse/exampulse-lms/internal/report"
	"github.com/exam-pulse/exampulse-lms/internal/storage"
	syncx "github.com/exam-pulse/exampulse-lms/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
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
	store := exam.NewSQLStore(dbh, cfg.DBDriver).
		WithEventLog(syncx.NewEventRepo(dbh))

	// --- Auth (local JWT) ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, dbh).
		WithBootstrapAdmin(cfg.AdminUser, cfg.AdminPassHash)

	// --- Reporting ---
	engine := report.NewEngine(store, log.Default())

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	// question-asset routes (protected)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Teacher-only: upload exam
		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.UploadExamHandler(store))

		// Student/Teacher: fetch + browse exams
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))

		// Student flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.CreateAttemptHandler(store))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{attemptID}/responses", api.SaveResponsesHandler(store))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// Analytics reports
		pr.With(rbac.Require("report:view-all")).
			Get("/exams/{examID}/report", api.ExamReportHandler(engine))
		pr.With(rbac.RequireOwnerOr("report:view-all", func(r *http.Request) bool {
			return chi.URLParam(r, "userID") == rbac.SubjectFromContext(r.Context())
		})).Get("/users/{userID}/report", api.UserReportHandler(engine))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
