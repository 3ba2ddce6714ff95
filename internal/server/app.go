// Package server initializes and runs the main application server.
// It connects to the database, runs migrations, wires the services and the
// HTTP router, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/devlink/internal/logging"
	"github.com/dmitrijs2005/devlink/internal/server/auth"
	"github.com/dmitrijs2005/devlink/internal/server/config"
	"github.com/dmitrijs2005/devlink/internal/server/httpapi"
	"github.com/dmitrijs2005/devlink/internal/server/posts"
	"github.com/dmitrijs2005/devlink/internal/server/shared/db"
	"github.com/dmitrijs2005/devlink/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	manager     db.RepositoryManager
	userService *users.Service
	postService *posts.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	us := users.NewService(manager.Users(), hasher, cfg)
	ps := posts.NewService(manager.Posts())

	return &App{
		config:      cfg,
		logger:      logger,
		manager:     manager,
		userService: us,
		postService: ps,
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

	router := httpapi.NewRouter(app.config, app.logger, app.userService, app.postService)
	s := httpapi.NewServer(app.config.EndpointAddr, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
