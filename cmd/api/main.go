package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mem "vet-directory/internal/adapters/storage/memory"
	"vet-directory/internal/adapters/storage/sqlstore"
	"vet-directory/internal/config"
	"vet-directory/internal/domain/vets"
	"vet-directory/internal/platform/logger"
	"vet-directory/internal/router"

	flag "github.com/spf13/pflag"
)

// @title        Vet Directory API
// @version      1.0
// @description  CRUD API for the veterinarian directory.
// @BasePath     /
func main() {
	if err := run(os.Args[1:], os.Environ(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "vetapi:", err)
		os.Exit(1)
	}
}

func run(args, env []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("vetapi", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	printConfig := fs.Bool("print-config", false, "Print the resolved config (DSN redacted) and exit")
	writeConfig := fs.String("write-config", "", "Write the resolved config to `path` and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(wd, flags, env)
	if err != nil {
		return err
	}

	if *writeConfig != "" {
		return config.WriteFile(*writeConfig, cfg)
	}
	if *printConfig {
		s, err := config.Format(cfg.Redacted())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, s)
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	opts := router.Options{
		VetsRepo:       repo,
		Logger:         log,
		AllowedOrigins: cfg.CORSOrigins(),
	}
	if db != nil {
		opts.DB = db
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":        cfg.Addr,
			"environment": cfg.Environment,
			"driver":      cfg.Database.Driver,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore migra (solo staging/production; si falla no arrancamos), abre la
// base y siembra el vet por defecto si está configurado.
func openStore(ctx context.Context, cfg config.Config, log logger.Logger) (vets.Repository, *sql.DB, error) {
	var (
		repo vets.Repository
		db   *sql.DB
	)

	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart", nil)
		repo = mem.NewVetRepo()
	} else {
		if cfg.ShouldMigrate() {
			if err := sqlstore.Migrate(cfg.Database, log); err != nil {
				return nil, nil, fmt.Errorf("database migration failed: %w", err)
			}
			log.Info("database migrations completed", nil)
		} else {
			log.Info("skipping migrations", map[string]any{"environment": cfg.Environment})
		}

		opened, err := sqlstore.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repo = sqlstore.NewVetsRepo(db, cfg.Database.Driver)
	}

	if cfg.SeedDefault {
		seeded, err := vets.NewService(repo).SeedDefault(ctx)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, nil, fmt.Errorf("seed default vet: %w", err)
		}
		log.Info("seed default vet", map[string]any{"inserted": seeded})
	}

	return repo, db, nil
}
