package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrConfigNotFound = errors.New("config file not found")
)

// FileName es el config opcional que se busca en el directorio de trabajo.
const FileName = "vetapi.json"

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite3"
	DriverMemory   Driver = "memory"
)

// DevOrigins son los orígenes del dev server del frontend (Vite).
var DevOrigins = []string{"http://localhost:5173", "https://localhost:5173"}

type Database struct {
	Driver Driver `json:"driver"`
	DSN    string `json:"dsn,omitempty"`
}

type Log struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
	App    string `json:"app,omitempty"`
}

// Config se resuelve una sola vez al arrancar y se pasa explícito a los constructores.
type Config struct {
	Addr           string      `json:"addr"`
	Environment    Environment `json:"environment"`
	Database       Database    `json:"database"`
	AllowedOrigins []string    `json:"allowed_origins,omitempty"`
	Log            Log         `json:"log"`
	SeedDefault    bool        `json:"seed_default,omitempty"`
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		Environment: EnvDevelopment,
		Database:    Database{Driver: DriverMySQL},
		Log:         Log{Level: "info", Format: "text", App: "vet-directory"},
	}
}

// ShouldMigrate: solo ambientes privilegiados corren migraciones al arrancar.
// En local/test el esquema se prepara por fuera (cmd/migrate).
func (c Config) ShouldMigrate() bool {
	return c.Environment == EnvProduction || c.Environment == EnvStaging
}

// CORSOrigins aplica los defaults por ambiente:
// - production: los configurados, o cualquier origen si no hay ninguno
// - resto: los configurados, o el dev server local
func (c Config) CORSOrigins() []string {
	if len(c.AllowedOrigins) > 0 {
		return c.AllowedOrigins
	}
	if c.Environment == EnvProduction {
		return []string{"*"}
	}
	return DevOrigins
}

// Redacted oculta el DSN (suele traer password) para poder imprimir la config.
func (c Config) Redacted() Config {
	if c.Database.DSN != "" {
		c.Database.DSN = "REDACTED"
	}
	return c
}

// Load resuelve la config con esta precedencia (gana el último):
// 1. Defaults
// 2. Archivo (vetapi.json en workDir, o el explícito de --config / VETAPI_CONFIG)
// 3. Variables de entorno
// 4. Flags
func Load(workDir string, flags *Flags, env []string) (Config, error) {
	cfg := Default()
	lookup := envLookup(env)

	path := ""
	if flags != nil && flags.ConfigPath != "" {
		path = flags.ConfigPath
	} else if v := lookup("VETAPI_CONFIG"); v != "" {
		path = v
	}

	fileCfg, loaded, err := loadFile(workDir, path)
	if err != nil {
		return Config{}, err
	}
	if loaded {
		cfg = merge(cfg, fileCfg)
	}

	cfg, err = applyEnv(cfg, lookup)
	if err != nil {
		return Config{}, err
	}

	if flags != nil {
		cfg = flags.apply(cfg)
	}

	cfg = normalize(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(workDir, explicit string) (Config, bool, error) {
	mustExist := explicit != ""

	path := explicit
	if path == "" {
		path = FileName
	}
	if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, true, nil
}

// Parse acepta JSONC (comentarios y comas finales).
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Addr != "" {
		base.Addr = overlay.Addr
	}
	if overlay.Environment != "" {
		base.Environment = overlay.Environment
	}
	if overlay.Database.Driver != "" {
		base.Database.Driver = overlay.Database.Driver
	}
	if overlay.Database.DSN != "" {
		base.Database.DSN = overlay.Database.DSN
	}
	if len(overlay.AllowedOrigins) > 0 {
		base.AllowedOrigins = overlay.AllowedOrigins
	}
	if overlay.Log.Level != "" {
		base.Log.Level = overlay.Log.Level
	}
	if overlay.Log.Format != "" {
		base.Log.Format = overlay.Log.Format
	}
	if overlay.Log.App != "" {
		base.Log.App = overlay.Log.App
	}
	if overlay.SeedDefault {
		base.SeedDefault = true
	}
	return base
}

func applyEnv(cfg Config, lookup func(string) string) (Config, error) {
	if v := lookup("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := lookup("APP_ENV"); v != "" {
		cfg.Environment = Environment(v)
	}
	if v := lookup("DB_DRIVER"); v != "" {
		cfg.Database.Driver = Driver(v)
	}

	// DB_DSN gana; MYSQL_CONNECTION_STRING queda por compatibilidad con despliegues viejos.
	if v := lookup("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	} else if v := lookup("MYSQL_CONNECTION_STRING"); v != "" {
		cfg.Database.DSN = v
	}

	if v := lookup("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := lookup("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := lookup("APP_NAME"); v != "" {
		cfg.Log.App = v
	}
	if v := lookup("SEED_DEFAULT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: SEED_DEFAULT=%q", ErrInvalidConfig, v)
		}
		cfg.SeedDefault = b
	}
	return cfg, nil
}

func normalize(cfg Config) Config {
	cfg.Environment = Environment(strings.ToLower(strings.TrimSpace(string(cfg.Environment))))
	cfg.Database.Driver = Driver(strings.ToLower(strings.TrimSpace(string(cfg.Database.Driver))))
	cfg.Database.DSN = strings.TrimSpace(cfg.Database.DSN)
	if cfg.Database.Driver == "pgx" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Driver == "sqlite" {
		cfg.Database.Driver = DriverSQLite
	}
	return cfg
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	}

	switch cfg.Environment {
	case EnvDevelopment, EnvTest, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidConfig, cfg.Environment)
	}

	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
		if cfg.Database.DSN == "" {
			return fmt.Errorf("%w: connection string for %s not found (set DB_DSN)", ErrInvalidConfig, cfg.Database.Driver)
		}
	case DriverMemory:
		if cfg.Environment == EnvProduction || cfg.Environment == EnvStaging {
			return fmt.Errorf("%w: memory driver is not allowed in %s", ErrInvalidConfig, cfg.Environment)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, cfg.Database.Driver)
	}
	return nil
}

// Format devuelve la config como JSON indentado (--print-config).
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}
	return string(data), nil
}

// WriteFile escribe la config de forma atómica (sin archivos a medio escribir).
func WriteFile(path string, cfg Config) error {
	s, err := Format(cfg)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(s+"\n")); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envLookup usa el slice recibido (p.ej. os.Environ() o uno armado en tests).
// Con env == nil cae a os.Getenv.
func envLookup(env []string) func(string) string {
	m := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	if env != nil {
		return func(k string) string { return m[k] }
	}
	return os.Getenv
}
