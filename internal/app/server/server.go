package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"esocial/internal/domain/audit"
	"esocial/internal/domain/esocial"
	"esocial/internal/platform/config"
	"esocial/internal/platform/db"
	"esocial/internal/platform/jobs"
	"esocial/internal/platform/metrics"
	"esocial/internal/transport/http/api"
	esocialhandler "esocial/internal/transport/http/handlers/esocial"
	"esocial/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to Postgres when DATABASE_URL is set and builds the router.
// Without a database only caller-supplied batches can be generated.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		if cfg.RunSeed {
			if err := db.Seed(ctx, pool, cfg); err != nil {
				pool.Close()
				return nil, fmt.Errorf("seed failed: %w", err)
			}
		}
	}

	collector := metrics.New()
	router, err := NewRouter(cfg, pool, collector)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	return &App{Config: cfg, DB: pool, Metrics: collector, Router: router}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// NewRouter wires middleware and routes. pool may be nil.
func NewRouter(cfg config.Config, pool *db.Pool, collector *metrics.Collector) (http.Handler, error) {
	generator, err := esocial.NewGenerator(cfg.ESocial, slog.Default())
	if err != nil {
		return nil, err
	}
	var store esocial.StoreAPI
	if pool != nil {
		store = esocial.NewStore(pool)
	}
	service := esocial.NewService(store, generator)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition", "Retry-After"},
		MaxAge:         300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	handler := esocialhandler.NewHandler(service, jobs.New(pool), collector)
	handler.Audit = audit.New(pool)
	handler.Limit = middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute)
	router.Route("/api/v1", handler.RegisterRoutes)

	return router, nil
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("esocial server listening", "addr", cfg.Addr, "database", app.DB != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
