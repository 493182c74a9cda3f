package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	DefaultDir   = "migrations"
	DefaultTable = "schema_migrations"
)

type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
}

var migratorFactory = func(sourceURL string, driver database.Driver) (migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Config struct {
	Dir             string
	MigrationsTable string
	Logger          Logger
}

// Status is the schema version recorded in the migrations table.
type Status struct {
	Version uint
	Dirty   bool
	// Pristine is true when no migration has ever been applied.
	Pristine bool
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	return run(ctx, db, cfg, "up", func(m migrator) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			cfg.info("No migrations to apply")
			return nil
		}
		if err != nil {
			return err
		}
		cfg.info("Migrations applied successfully")
		return nil
	})
}

// Down rolls back the given number of applied migrations.
func Down(ctx context.Context, db *sql.DB, cfg Config, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrations: down steps must be positive, got %d", steps)
	}
	return run(ctx, db, cfg, "down", func(m migrator) error {
		err := m.Steps(-steps)
		if errors.Is(err, migrate.ErrNoChange) {
			cfg.info("No migrations to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		cfg.info("Migrations rolled back", "steps", steps)
		return nil
	})
}

// CurrentVersion reports the schema version without changing anything.
func CurrentVersion(ctx context.Context, db *sql.DB, cfg Config) (Status, error) {
	var status Status
	err := run(ctx, db, cfg, "version", func(m migrator) error {
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			status.Pristine = true
			return nil
		}
		if err != nil {
			return err
		}
		status.Version = v
		status.Dirty = dirty
		return nil
	})
	return status, err
}

func (cfg Config) info(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Info(msg, args...)
	}
}

func (cfg Config) warn(msg string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Warn(msg, args...)
	}
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = DefaultDir
	}
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = DefaultTable
	}
}

func sourceURLFor(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(absDir)}).String(), nil
}

// run opens a migrator, executes op and always closes it. golang-migrate has no
// context support, so cancellation closes the migrator to interrupt op.
func run(ctx context.Context, db *sql.DB, cfg Config, name string, op func(migrator) error) error {
	if db == nil {
		return fmt.Errorf("migrations: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg.applyDefaults()

	sourceURL, err := sourceURLFor(cfg.Dir)
	if err != nil {
		return fmt.Errorf("migrations: resolve dir: %w", err)
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}

	m, err := migratorFactory(sourceURL, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	var closeOnce sync.Once
	closeMigrator := func() {
		closeOnce.Do(func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				cfg.warn("Migrations source close error", "error", srcErr)
			}
			if dbErr != nil {
				cfg.warn("Migrations db close error", "error", dbErr)
			}
		})
	}
	defer closeMigrator()

	cfg.info("Running SQL migrations", "op", name, "source", sourceURL, "table", cfg.MigrationsTable)

	errCh := make(chan error, 1)
	go func() {
		errCh <- op(m)
	}()

	select {
	case <-ctx.Done():
		closeMigrator()
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("migrations: %s: %w", name, err)
		}
		return nil
	}
}
