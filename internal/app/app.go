package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"student-auth/internal/auth"
	"student-auth/internal/config"
	"student-auth/internal/db"
	"student-auth/internal/health"
	"student-auth/internal/kafka"
	"student-auth/internal/messaging"
	"student-auth/internal/metrics"
	"student-auth/internal/middleware"
	"student-auth/internal/password"
	"student-auth/internal/student"
	"student-auth/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// publisher is an event producer that owns a broker connection.
type publisher interface {
	auth.EventProducer
	Close() error
}

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	database  *bun.DB
	producer  publisher
	telemetry *telemetry.Telemetry
}

// New connects the store, creates the schema and wires the HTTP routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application", "env", cfg.Env, "version", Version)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	appMetrics, err := metrics.New(tel.Meter)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	if err := metrics.RegisterRuntime(tel.Meter); err != nil {
		logger.Warn("failed to register runtime metrics", "error", err)
	}

	database, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	if err := appMetrics.Database.RegisterDB(database.DB, tel.Meter); err != nil {
		logger.Warn("failed to register database pool metrics", "error", err)
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    logger,
		database:  database,
		telemetry: tel,
	}

	app.producer, err = newPublisher(cfg.Events, logger)
	if err != nil {
		// Registration works without a broker; events are simply not sent.
		logger.Warn("failed to initialize event producer", "driver", cfg.Events.Driver, "error", err)
		app.producer = nil
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	studentRepo := student.NewRepository(database, appMetrics)

	healthHandler := health.NewHandler(studentRepo, logger)
	healthHandler.RegisterRoutes(app.router)

	var producer auth.EventProducer
	if app.producer != nil {
		producer = app.producer
	}

	hasher := password.NewBcryptHasher(cfg.Hasher.Cost)
	authService := auth.NewService(studentRepo, hasher, producer, appMetrics, logger)
	authHandler := auth.NewHandler(authService, logger)
	authHandler.RegisterRoutes(app.router)

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("application initialized successfully", "hasher_cost", hasher.Cost())

	return app, nil
}

// Migrate creates the schema and closes the store.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	database, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close(database)

	logger.Info("migrations applied", "driver", cfg.Database.Driver)
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*bun.DB, error) {
	database, err := db.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.RunMigrations(ctx, database, (*student.Student)(nil)); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func newPublisher(cfg config.EventsConfig, logger *slog.Logger) (publisher, error) {
	switch cfg.Driver {
	case config.EventsNATS:
		return messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger)
	case config.EventsKafka:
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	default:
		return nil, nil
	}
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.logger.Info("server starting", "port", a.config.Server.Port)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then releases the broker, store and
// telemetry in that order.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer: %w", err))
		}
	}

	if err := db.Close(a.database); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}
