// Package httpapi exposes the Cohort Tools API over HTTP/JSON: the
// authentication endpoints, the cohort and student resources, and the
// middleware chain around them.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/services"
)

// Server wires the HTTP router to the application services.
type Server struct {
	address  string
	logger   logging.Logger
	auth     *services.AuthService
	cohorts  *services.CohortService
	students *services.StudentService
	db       *sql.DB
}

func NewServer(address string, logger logging.Logger, auth *services.AuthService, cohorts *services.CohortService, students *services.StudentService, db *sql.DB) *Server {
	return &Server{
		address:  address,
		logger:   logger.With("module", "http_server"),
		auth:     auth,
		cohorts:  cohorts,
		students: students,
		db:       db,
	}
}

// Router builds the route table. CORS and request logging wrap everything;
// bearer authentication wraps only the routes that need an identity.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger)

	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authenticate).Get("/auth/verify", s.handleVerify)

	r.Route("/api", func(r chi.Router) {
		r.With(s.authenticate).Get("/user/{id}", s.handleGetUser)

		r.Get("/cohorts", s.handleListCohorts)
		r.Post("/cohorts", s.handleCreateCohort)
		r.Get("/cohorts/{cohortId}", s.handleGetCohort)
		r.Put("/cohorts/{cohortId}", s.handleUpdateCohort)
		r.Delete("/cohorts/{cohortId}", s.handleDeleteCohort)

		r.Get("/students", s.handleListStudents)
		r.Post("/students", s.handleCreateStudent)
		r.Get("/students/cohort/{cohortId}", s.handleListStudentsByCohort)
		r.Get("/students/{studentId}", s.handleGetStudent)
		r.Put("/students/{studentId}", s.handleUpdateStudent)
		r.Delete("/students/{studentId}", s.handleDeleteStudent)
	})

	r.Get("/healthz", s.handleHealth)

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
