package config

import (
	flag "github.com/spf13/pflag"
)

// Flags son los overrides de línea de comandos. Solo se aplican los que
// el usuario pasó explícitamente (fs.Changed), así no pisan env/archivo.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath  string
	Addr        string
	Environment string
	DBDriver    string
	DBDSN       string
	LogLevel    string
	LogFormat   string
	SeedDefault bool
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Path to a JSONC config file (default ./"+FileName+" if present)")
	fs.StringVar(&f.Addr, "addr", "", "Listen address, e.g. :8080")
	fs.StringVar(&f.Environment, "env", "", "Environment: development, test, staging, production")
	fs.StringVar(&f.DBDriver, "db-driver", "", "Database driver: mysql, postgres, sqlite3, memory")
	fs.StringVar(&f.DBDSN, "db-dsn", "", "Database connection string")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format: text, json")
	fs.BoolVar(&f.SeedDefault, "seed-default", false, "Insert a default vet when the table is empty")

	return f
}

func (f *Flags) apply(cfg Config) Config {
	if f.fs == nil {
		return cfg
	}
	if f.fs.Changed("addr") {
		cfg.Addr = f.Addr
	}
	if f.fs.Changed("env") {
		cfg.Environment = Environment(f.Environment)
	}
	if f.fs.Changed("db-driver") {
		cfg.Database.Driver = Driver(f.DBDriver)
	}
	if f.fs.Changed("db-dsn") {
		cfg.Database.DSN = f.DBDSN
	}
	if f.fs.Changed("log-level") {
		cfg.Log.Level = f.LogLevel
	}
	if f.fs.Changed("log-format") {
		cfg.Log.Format = f.LogFormat
	}
	if f.fs.Changed("seed-default") {
		cfg.SeedDefault = f.SeedDefault
	}
	return cfg
}
