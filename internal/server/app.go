// Package server initializes and runs the main application server.
// It opens the database, bootstraps the schema, wires the services,
// and starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cohorttools/cohort-api/internal/logging"
	"github.com/cohorttools/cohort-api/internal/server/auth"
	"github.com/cohorttools/cohort-api/internal/server/config"
	"github.com/cohorttools/cohort-api/internal/server/httpapi"
	"github.com/cohorttools/cohort-api/internal/server/repositories/repomanager"
	"github.com/cohorttools/cohort-api/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	authService    *services.AuthService
	cohortService  *services.CohortService
	studentService *services.StudentService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.EnsureSchema(context.Background(), db); err != nil {
		return nil, fmt.Errorf("schema bootstrap error: %w", err)
	}

	hasher := auth.NewBcryptHasher()

	as := services.NewAuthService(db, rm, hasher, logger, c)
	cs := services.NewCohortService(db, rm, logger)
	ss := services.NewStudentService(db, rm, logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		authService:    as,
		cohortService:  cs,
		studentService: ss,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.authService, app.cohortService, app.studentService, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
