package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"vet-directory/internal/adapters/storage/sqlstore"
	"vet-directory/internal/config"
	"vet-directory/internal/platform/logger"

	flag "github.com/spf13/pflag"
)

// migrate corre las migraciones de Vets a mano. En development/test el
// servidor no migra solo, así que el setup local pasa por acá.
func main() {
	if err := run(os.Args[1:], os.Environ(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args, env []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	fs.Usage = func() { usage(stdout, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stdout, fs)
		return errors.New("missing command")
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd, flags, env)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return errors.New("memory driver has no schema to migrate")
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	mg, err := sqlstore.NewMigrator(cfg.Database, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	switch cmd := rest[0]; cmd {
	case "up":
		if err := mg.Up(); err != nil {
			return err
		}
		log.Info("migrations: up completed", nil)

	case "down":
		steps := 1
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid steps argument %q", rest[1])
			}
			steps = n
		}
		if err := mg.Down(steps); err != nil {
			return err
		}
		log.Info("migrations: down completed", map[string]any{"steps": steps})

	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(rest) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", rest[1])
		}
		if err := mg.Force(v); err != nil {
			return err
		}
		log.Info("migrations: forced", map[string]any{"version": v})

	default:
		usage(stdout, fs)
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `Usage: migrate [flags] <command> [args]

Commands:
  up              Apply all pending migrations
  down [N]        Roll back N migrations (default 1)
  version         Print the current schema version
  force V         Set the version without running migrations (fixes dirty state)

Flags:
`)
	fmt.Fprint(w, fs.FlagUsages())
}
