package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"vet-directory/internal/platform/httpclient"

	flag "github.com/spf13/pflag"
)

// healthcheck es para el HEALTHCHECK del contenedor (la imagen no trae curl).
// Sale con 0 si /health responde 2xx.
func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, stdout io.Writer) error {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)

	defaultURL := "http://127.0.0.1:8080"
	if port := getenv("PORT"); port != "" {
		defaultURL = "http://127.0.0.1:" + port
	}

	baseURL := fs.String("url", defaultURL, "Base URL of the API")
	path := fs.String("path", "/health", "Health endpoint path")
	timeout := fs.Duration("timeout", 3*time.Second, "Request timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	c, err := httpclient.New(*baseURL, *timeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := c.Check(ctx, *path); err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, "ok")
	return err
}
