package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"normas/internal/config"
	"normas/internal/logger"
	"normas/pkg/logging"
)

var (
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ingestion-service",
		Short: "Regulatory-document ingestion pipeline",
		Long:  "Fetches regulatory-document listings, validates them against configurable rules and persists new records idempotently",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*App, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		return nil, log, err
	}

	return app, log, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one ingestion run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, log, err := setup(ctx)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer app.Shutdown()

			log.Infow("Starting one-shot ingestion run")
			return app.RunOnce(ctx)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline on a schedule with health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app, log, err := setup(ctx)
			if err != nil {
				return err
			}
			defer log.Sync()
			defer app.Shutdown()

			log.Infow("Service running")
			if err := app.Serve(ctx); err != nil && err != context.Canceled {
				log.Errorw("Service stopped with error", "error", err)
				return err
			}
			log.Infow("Service shutdown complete")
			return nil
		},
	}
}
