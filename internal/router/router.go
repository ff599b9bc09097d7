package router

import (
	"context"
	"net/http"
	"time"

	_ "vet-directory/docs"
	mem "vet-directory/internal/adapters/storage/memory"
	"vet-directory/internal/config"
	"vet-directory/internal/domain/vets"
	"vet-directory/internal/middleware"
	"vet-directory/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger lo cumple *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	// Si viene nil se usa el store in-memory (modo dev / tests).
	VetsRepo vets.Repository

	// Opcional: /health pinguea la base si está seteado.
	DB Pinger

	Logger logger.Logger

	// Orígenes permitidos para CORS. Vacío => dev server local.
	AllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = config.DevOrigins
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(opts.DB))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	repo := opts.VetsRepo
	if repo == nil {
		repo = mem.NewVetRepo()
	}

	vets.RegisterRoutes(r, vets.NewService(repo), log)

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
