// Package main implements the seed command. It loads the default
// workflow template catalog and an initial administrator account into
// the database. Running it twice is safe: existing templates and the
// admin user are left untouched.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sgt-project/sgt-api/internal/config"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
	"github.com/sgt-project/sgt-api/internal/platform/postgres"
	"github.com/sgt-project/sgt-api/internal/service/auth"
	"github.com/sgt-project/sgt-api/internal/store"
)

// defaultTemplates is the workflow catalog loaded on a fresh install.
var defaultTemplates = []struct {
	name   string
	states []string
}{
	{"Scrum", []string{"To Do", "In Progress", "In Review", "Done"}},
	{"Kanban Básico", []string{"Pendiente", "En Proceso", "Completado"}},
	{"Soporte IT", []string{"Nuevo", "Asignado", "En Progreso", "Resuelto", "Cerrado"}},
	{"Marketing", []string{"Idea", "Planificación", "Ejecución", "Finalizado"}},
	{"Ventas", []string{"Prospecto", "En Negociación", "Cerrado Exitoso", "Cerrado Perdido"}},
	{"Reclutamiento", []string{"Vacante Abierta", "Entrevista", "Oferta", "Contratado", "Rechazado"}},
	{"Proyecto", []string{"Inicio", "Planificación", "Ejecución", "Monitoreo", "Cierre"}},
	{"Mantenimiento", []string{"Programado", "En Ejecución", "Finalizado"}},
	{"Producción", []string{"En Cola", "En Proceso", "Control Calidad", "Completado"}},
	{"Custom Simple", []string{"Pendiente", "Hecho"}},
}

func main() {
	adminUsername := flag.String("admin-username", "admin", "username of the initial administrator")
	adminPassword := flag.String("admin-password", "", "password of the initial administrator (required when creating)")
	adminEmail := flag.String("admin-email", "admin@example.com", "email of the initial administrator")
	flag.Parse()

	if err := run(*adminUsername, *adminPassword, *adminEmail); err != nil {
		log.Fatalf("seed error: %v", err)
	}
}

func run(adminUsername, adminPassword, adminEmail string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := seedTemplates(ctx, db, appLogger); err != nil {
		return err
	}
	return seedAdmin(ctx, db, appLogger, adminUsername, adminPassword, adminEmail)
}

// seedTemplates inserts every default template that is not already
// present, matched by name.
func seedTemplates(ctx context.Context, db *sql.DB, appLogger *slog.Logger) error {
	workflows := postgres.NewPostgresWorkflowStore(db, appLogger)

	existing, err := workflows.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workflow templates: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, tmpl := range existing {
		present[tmpl.Name] = true
	}

	for _, entry := range defaultTemplates {
		if present[entry.name] {
			continue
		}

		tmpl, err := domain.NewWorkflowTemplate(entry.name, entry.states)
		if err != nil {
			return fmt.Errorf("invalid template %q: %w", entry.name, err)
		}

		err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return workflows.WithTx(tx).Create(ctx, tmpl)
		})
		if err != nil {
			return fmt.Errorf("failed to create template %q: %w", entry.name, err)
		}
		appLogger.Info("Workflow template created", "name", entry.name, "states", len(entry.states))
	}
	return nil
}

// seedAdmin creates the initial administrator unless one with the given
// username already exists.
func seedAdmin(ctx context.Context, db *sql.DB, appLogger *slog.Logger, username, password, email string) error {
	users := postgres.NewPostgresUserStore(db, appLogger)

	if _, err := users.GetByUsername(ctx, username); err == nil {
		appLogger.Info("Administrator already exists, skipping", "username", username)
		return nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("failed to look up administrator: %w", err)
	}

	if password == "" {
		return errors.New("an -admin-password is required to create the initial administrator")
	}

	admin, err := domain.NewUser(username, "Admin", "Inicial", email, password, domain.RoleAdministrador)
	if err != nil {
		return fmt.Errorf("invalid administrator account: %w", err)
	}

	hashed, err := auth.NewBcryptVerifier().Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash administrator password: %w", err)
	}
	admin.HashedPassword = hashed
	admin.Password = ""

	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return users.WithTx(tx).Create(ctx, admin)
	})
	if err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	appLogger.Info("Administrator created", "username", username)
	return nil
}
