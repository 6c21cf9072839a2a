package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sgt-project/sgt-api/internal/config"
	"github.com/sgt-project/sgt-api/internal/platform/postgres"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/service/analytics"
	"github.com/sgt-project/sgt-api/internal/service/auth"
	"github.com/sgt-project/sgt-api/internal/store"
)

// application holds the wired dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	boardStore store.BoardStore
	taskStore  store.TaskStore
	workflows  store.WorkflowStore

	jwtService auth.JWTService

	userService      service.UserService
	boardService     service.BoardService
	taskService      service.TaskService
	workflowService  service.WorkflowService
	analyticsService analytics.Service
}

// newApplication wires stores and services on top of an open database
// connection. The stores share the connection; mutating services run
// their work through transactions on it.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.boardStore = postgres.NewPostgresBoardStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.workflows = postgres.NewPostgresWorkflowStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	bcryptVerifier := auth.NewBcryptVerifier()

	app.userService, err = service.NewUserService(db, app.userStore, bcryptVerifier, bcryptVerifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.boardService, err = service.NewBoardService(db, app.boardStore, app.userStore, app.workflows, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.taskService, err = service.NewTaskService(db, app.taskStore, app.boardStore, app.workflows, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.workflowService, err = service.NewWorkflowService(db, app.workflows, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow service: %w", err)
	}

	app.analyticsService, err = analytics.NewService(app.boardStore, app.taskStore, app.workflows, app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}

	return app, nil
}
