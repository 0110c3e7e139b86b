package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the schema up to the latest version. Already-current
// databases are a no-op.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("opening migrations at %s: %w", migrationsPath, err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case err == nil:
		ver, _, _ := m.Version()
		slog.Info("schema migrated", "version", ver)
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("schema already current")
	default:
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
