package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations brings the schema up to date. An empty sourceURL uses the
// migrations compiled into the binary; otherwise it names a migrate source such as file://path.
func RunMigrations(sourceURL, databaseURL string) error {
	m, err := newMigrator(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	var dirty migrate.ErrDirty
	if !errors.As(err, &dirty) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// a half-applied step leaves the version dirty: roll the marker back one step and retry once
	prev := max(dirty.Version-1, 0)
	if err := m.Force(prev); err != nil {
		return fmt.Errorf("reset dirty version %d: %w", dirty.Version, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations after reset: %w", err)
	}
	return nil
}

func newMigrator(sourceURL, databaseURL string) (*migrate.Migrate, error) {
	if sourceURL != "" {
		return migrate.New(sourceURL, databaseURL)
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}
