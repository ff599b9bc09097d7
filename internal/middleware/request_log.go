package middleware

import (
	"net/http"
	"time"

	"vet-directory/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog deja una línea por request. 5xx van a error, 4xx a warn.
// Va antes de chimw.Recoverer: el panic se loguea vía LogEntry.Panic.
func RequestLog(log logger.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&LogFormatter{Log: log})
}

// LogFormatter adapta logger.Logger a chimw.LogFormatter.
type LogFormatter struct {
	Log logger.Logger
}

func (f *LogFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &logEntry{
		log: f.Log.With(map[string]any{
			"request_id": GetRequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote":     r.RemoteAddr,
		}),
	}
}

type logEntry struct {
	log logger.Logger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	if status == 0 {
		status = http.StatusOK
	}

	fields := map[string]any{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": elapsed.Milliseconds(),
	}

	switch {
	case status >= 500:
		e.log.Error("http request", fields)
	case status >= 400:
		e.log.Warn("http request", fields)
	default:
		e.log.Info("http request", fields)
	}
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.log.Error("panic recovered", map[string]any{
		"panic": v,
		"stack": string(stack),
	})
}
