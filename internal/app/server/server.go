package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/domain/audit"
	"wagebook/internal/domain/auth"
	"wagebook/internal/domain/payroll"
	"wagebook/internal/domain/reports"
	"wagebook/internal/platform/config"
	"wagebook/internal/platform/db"
	"wagebook/internal/platform/metrics"
	"wagebook/internal/transport/http/api"
	attendancehandler "wagebook/internal/transport/http/handlers/attendance"
	audithandler "wagebook/internal/transport/http/handlers/audit"
	authhandler "wagebook/internal/transport/http/handlers/auth"
	reportshandler "wagebook/internal/transport/http/handlers/reports"
	"wagebook/internal/transport/http/middleware"
	"wagebook/migrations"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// Handlers are the API route groups mounted under /api/v1.
type Handlers struct {
	Auth       *authhandler.Handler
	Attendance *attendancehandler.Handler
	Reports    *reportshandler.Handler
	Audit      *audithandler.Handler
}

// RouterDeps is everything NewRouter needs besides the handlers.
type RouterDeps struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Scopes  middleware.ScopeLoader
	Ready   func(ctx context.Context) error
}

// New connects to the database, prepares the schema and wires every handler.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		var applied []string
		if cfg.MigrationsDir != "" {
			applied, err = db.MigrateDir(ctx, pool, cfg.MigrationsDir)
		} else {
			applied, err = db.Migrate(ctx, pool, migrations.FS)
		}
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		logger.Info("migrations complete", "applied", len(applied))
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore, cfg.JWTSecret, cfg.TokenTTL)
	attendanceStore := attendance.NewStore(pool)
	attendanceService := attendance.NewService(attendanceStore)
	reportService := reports.NewService(
		attendanceStore,
		reports.NewAggregator(payroll.NewCalculator(payroll.DefaultPolicy())),
		cfg.ReportWorkers,
		logger,
	)

	auditService := audit.New(pool)
	reportsHandler := reportshandler.NewHandler(reportService, authStore, collector, cfg.ReceiptsPerPage)
	attendanceHandler := attendancehandler.NewHandler(attendanceService, authStore, middleware.NewIdempotencyStore(pool))
	attendanceHandler.Audit = auditService
	attendanceHandler.BranchRoutes = append(attendanceHandler.BranchRoutes, reportsHandler.RegisterBranchRoutes)

	authHandler := authhandler.NewHandler(authService, authStore)
	authHandler.Audit = auditService

	router := NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  logger,
		Metrics: collector,
		Scopes:  authService,
		Ready:   pool.Ping,
	}, Handlers{
		Auth:       authHandler,
		Attendance: attendanceHandler,
		Reports:    reportsHandler,
		Audit:      audithandler.NewHandler(auditService),
	})

	return &App{Config: cfg, DB: pool, Router: router, Logger: logger, Metrics: collector}, nil
}

// NewLogger builds the JSON logger shared by the application and the request
// log middleware.
func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	format := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: format.ReplaceAttr,
	})).With(
		slog.String("app", "wagebook"),
		slog.String("env", cfg.Environment),
	)
}

func NewRouter(deps RouterDeps, handlers Handlers) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:           300,
	}))
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.CleanPath)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, deps.Scopes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		}
		if handlers.Auth != nil {
			handlers.Auth.RegisterPublicRoutes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			if handlers.Auth != nil {
				handlers.Auth.RegisterRoutes(r)
			}
			if handlers.Attendance != nil {
				handlers.Attendance.RegisterRoutes(r)
			}
			if handlers.Reports != nil {
				handlers.Reports.RegisterRoutes(r)
			}
			if handlers.Audit != nil {
				handlers.Audit.RegisterRoutes(r)
			}
		})
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("wagebook server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down", "reason", context.Cause(ctx))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
