// Package db provides database connection infrastructure.
// This is part of the platform layer and contains no business logic.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cmms_backend/platform/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations from the provided directory.
// An empty directory disables migrations, which CLI tooling and tests use.
func RunMigrations(_ context.Context, cfg config.DatabaseConfig, migrationsDir string) error {
	if strings.TrimSpace(migrationsDir) == "" {
		return nil
	}

	m, err := migrate.New("file://"+migrationsDir, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("open migration source %q: %w", migrationsDir, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		// A dirty schema needs manual intervention; name the version so the
		// operator knows where to look.
		if version, dirty, verr := m.Version(); verr == nil && dirty {
			return fmt.Errorf("apply migrations: schema dirty at version %d: %w", version, err)
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
