package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vet-directory/internal/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// driverName traduce el driver de config al nombre registrado en database/sql.
func driverName(d config.Driver) (string, error) {
	switch d {
	case config.DriverMySQL:
		return "mysql", nil
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, d)
	}
}

// Open abre un pool (database/sql) y verifica conectividad con un ping.
// Cada operación del store toma su propia conexión del pool y la devuelve al terminar.
func Open(dbc config.Database) (*sql.DB, error) {
	name, err := driverName(dbc.Driver)
	if err != nil {
		return nil, err
	}

	dsn := dbc.DSN
	if dbc.Driver == config.DriverMySQL {
		if dsn, err = normalizeMySQLDSN(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	// sqlite: un solo writer, evitamos "database is locked"
	if dbc.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// CreatedAt es DATETIME: sin parseTime el driver devuelve []byte.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// rebind pasa los placeholders "?" a "$n" para Postgres.
// Las queries de este paquete no llevan "?" dentro de literales.
func rebind(d config.Driver, query string) string {
	if d != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
