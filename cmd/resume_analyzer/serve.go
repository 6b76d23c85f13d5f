package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/filestore"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for analysis, scoring and the issue catalog.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Create database tables before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, appConfig, logger, appConfig.GeminiAPIKey != "")
	if err != nil {
		return err
	}
	defer d.Close()

	cfg := server.Config{
		Port:            appConfig.Port,
		Analyzer:        d.analyzer,
		Catalog:         d.catalog,
		Rules:           d.rules,
		RefreshInterval: appConfig.RefreshInterval,
		RateLimit:       ratelimit.DefaultConfig(appConfig.RateLimit, appConfig.RateBurst),
		Logger:          logger,
	}
	if d.db != nil {
		if serveMigrate {
			if err := d.db.Migrate(ctx); err != nil {
				return err
			}
		}
		cfg.Results = d.db
		cfg.PersistResults = appConfig.PersistResults
	}

	if d.files != nil {
		go func() {
			err := d.files.Watch(ctx, filestore.DefaultDebounce, func(int64) {
				if err := d.catalog.Refresh(ctx); err != nil {
					logger.Warn("catalog reload failed", zap.Error(err))
				}
				if d.rules != nil {
					if _, err := d.rules.RefreshIfStale(ctx); err != nil {
						logger.Warn("rule reload failed", zap.Error(err))
					}
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("file watcher stopped", zap.Error(err))
			}
		}()
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	logger.Info("serving",
		zap.Int("port", appConfig.Port),
		zap.Bool("rule_engine", d.rules != nil),
		zap.Bool("database", d.db != nil),
		zap.Bool("model_features", appConfig.GeminiAPIKey != ""))
	return srv.Run(ctx)
}
