package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"student-auth/internal/app"
	"student-auth/internal/config"
	"student-auth/internal/logger"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var configFile string

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "student-auth",
		Short:        "Student registration and login service",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the students table and exit",
		RunE:  runMigrate,
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	log := logger.NewWithServiceContext(app.ServiceName, app.Version)
	slog.SetDefault(log)

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, oops.Code("CONFIG_INVALID").With("config_file", configFile).Wrap(err)
	}
	log.Info("config loaded", "env", cfg.Env)

	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return oops.Code("STARTUP_FAILED").Wrap(err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Run()
	}()

	var runErr error
	select {
	case runErr = <-serverErr:
		if runErr != nil {
			log.Error("server failed", "error", runErr)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}

	if runErr != nil {
		return oops.Code("SERVER_FAILED").Wrap(runErr)
	}

	log.Info("server exited gracefully")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	if err := app.Migrate(cmd.Context(), cfg, log); err != nil {
		return oops.Code("MIGRATION_FAILED").With("driver", cfg.Database.Driver).Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
