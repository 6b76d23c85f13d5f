// Package main provides the entry point for the résumé analyzer CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/logging"
)

var (
	configFile  string
	debugLogs   bool
	jsonLogs    bool
	rulesFile   string
	catalogFile string

	// Set by the root pre-run hook for every subcommand.
	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "resume_analyzer",
	Short: "Résumé analysis CLI and HTTP API server",
	Long: "resume_analyzer detects structure, content, formatting and completeness problems in " +
		"plain-text résumés and scores them, from the command line or over a REST API.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML or JSON config file")
	pf.BoolVar(&debugLogs, "debug", false, "Enable debug logging")
	pf.BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	pf.StringVar(&rulesFile, "rules", "", "YAML detection rules file (used when no database is configured)")
	pf.StringVar(&catalogFile, "catalog", "", "YAML issue catalog file (used when no database is configured)")
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"debug":     "debug",
	"json-logs": "log_json",
	"rules":     "rules_file",
	"catalog":   "catalog_file",
	"port":      "port",
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}

	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	l, err := logging.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	appConfig, logger = cfg, l
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
