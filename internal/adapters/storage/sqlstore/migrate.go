package sqlstore

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"vet-directory/internal/config"
	"vet-directory/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator crea y versiona la tabla Vets. Up es idempotente: sin cambios
// pendientes devuelve nil (las DDL además usan IF NOT EXISTS).
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator abre su propio pool contra el descriptor recibido; Close lo libera.
func NewMigrator(dbc config.Database, log logger.Logger) (*Migrator, error) {
	db, err := Open(dbc)
	if err != nil {
		return nil, fmt.Errorf("migrate: open database: %w", err)
	}

	var drv database.Driver
	switch dbc.Driver {
	case config.DriverMySQL:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case config.DriverPostgres:
		drv, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case config.DriverSQLite:
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedDriver, dbc.Driver)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: database driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(dbc.Driver))
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate: source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dbc.Driver), drv)
	if err != nil {
		_ = src.Close()
		_ = drv.Close()
		return nil, fmt.Errorf("migrate: init: %w", err)
	}
	if log != nil {
		m.Log = migrateLogger{log: log}
	}

	return &Migrator{m: m}, nil
}

func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (mg *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migrate down: invalid steps %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version devuelve 0 si todavía no se aplicó ninguna migración.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("migrate force: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate lleva el esquema a la última versión. Con el driver memory no hay nada que hacer.
func Migrate(dbc config.Database, log logger.Logger) error {
	if dbc.Driver == config.DriverMemory {
		return nil
	}

	mg, err := NewMigrator(dbc, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	return mg.Up()
}

type migrateLogger struct {
	log logger.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), map[string]any{"component": "migrate"})
}

func (l migrateLogger) Verbose() bool { return false }
