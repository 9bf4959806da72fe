// Package migration runs the versioned SQL migrations under migrations/
// against PostgreSQL.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives golang-migrate over a directory of *.up.sql/*.down.sql files
type Migrator struct {
	m      *migrate.Migrate
	dir    string
	logger *zap.Logger
}

// Status is the database version plus the migration files on either side of it
type Status struct {
	Version uint
	Dirty   bool
	Applied []string
	Pending []string
}

// New wraps an open PostgreSQL connection. Closing the Migrator closes db.
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{m: m, dir: dir, logger: logger.Named("migrate")}, nil
}

// run executes one golang-migrate operation, treating ErrNoChange as success
func (mg *Migrator) run(op string, fn func() error, fields ...zap.Field) error {
	mg.logger.Info("migration "+op+" started", fields...)
	err := fn()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Info("migration "+op+": nothing to do")
		return nil
	case err != nil:
		return fmt.Errorf("migration %s: %w", op, err)
	}

	version, dirty, err := mg.version()
	if err != nil {
		return err
	}
	mg.logger.Info("migration "+op+" finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down rolls everything back
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps moves n migrations forward, or back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

// Force records version as current without running anything. It is the way
// out of a dirty state after a failed migration was repaired by hand.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return v, dirty, nil
}

// Status compares the recorded version with the files on disk
func (mg *Migrator) Status() (*Status, error) {
	version, dirty, err := mg.version()
	if err != nil {
		return nil, err
	}
	files, err := ListMigrations(mg.dir)
	if err != nil {
		return nil, err
	}

	st := &Status{Version: version, Dirty: dirty}
	for _, f := range files {
		if f.Version <= uint64(version) {
			st.Applied = append(st.Applied, f.Name)
		} else {
			st.Pending = append(st.Pending, f.Name)
		}
	}
	return st, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
