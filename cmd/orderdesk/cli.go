package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"orderdesk/application"
	"orderdesk/infrastructure/config"
	"orderdesk/infrastructure/logging"
)

// shutdownTimeout bounds Coordinator.Stop after a signal.
const shutdownTimeout = 10 * time.Second

// execute runs the CLI with args and returns the process exit code.
// Errors, including cobra usage errors, are reported on stderr.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "command error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "orderdesk",
		Short:         "Order and user management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("ORDERDESK_CONFIG"), "path to the YAML configuration file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run until interrupted (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})
	cmd.AddCommand(newSeedCmd(&configPath))
	return cmd
}

func newSeedCmd(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture users and orders into the configured storage and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer closeLog()

			if dir != "" {
				cfg.Seed.Dir = dir
			}

			ctx := logging.WithAttrs(logging.With(context.Background(), logger), "command", "seed")
			coordinator, err := application.NewCoordinator(ctx, &application.CoordinatorConfig{
				Config: cfg,
				Logger: logging.From(ctx),
			})
			if err != nil {
				logger.Error("Failed to initialize application", "error", err)
				return err
			}
			defer coordinator.Stop(ctx)

			res, err := coordinator.LoadSeed(ctx)
			if err != nil {
				logger.Error("Seeding failed", "error", err, "users", res.Users, "orders", res.Orders)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d orders\n", res.Users, res.Orders)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of seed YAML files (default: embedded demo data)")
	return cmd
}

// bootstrap loads the configuration and initializes logging.
func bootstrap(configPath string) (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg, err := cfg.LoggingOptions()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	// Initialize logging (dev: console only, prod: rotating file)
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, logger, closeLog, nil
}

func runServe(parent context.Context, configPath string) error {
	cfg, logger, closeLog, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("Starting orderdesk", "storage", cfg.Storage)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(logging.With(parent, logger), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator, err := application.NewCoordinator(ctx, &application.CoordinatorConfig{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		return err
	}

	if err := coordinator.Start(ctx); err != nil {
		logger.Error("Failed to start application", "error", err)
		coordinator.Stop(context.Background())
		return err
	}

	summary := coordinator.Dashboard().Summary()
	logger.Info("Ready", "users", summary.Users, "orders", summary.Orders, "open_orders", summary.OpenOrders)

	<-ctx.Done()
	logger.Info("Shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	coordinator.Stop(shutdownCtx)

	logger.Info("Application shutdown complete")
	return nil
}
