package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect, validate and publish detection rules",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that every rule in a YAML rules file compiles",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesValidate,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules currently loaded from the configured store",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Upsert a YAML rules file into the database and bump the rule cache version",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesPush,
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd, rulesListCmd, rulesPushCmd)
	rootCmd.AddCommand(rulesCmd)
}

// loadRulesFile parses a rules file and compiles every rule.
func loadRulesFile(path string) ([]types.DetectionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	f, err := rules.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if errs := rules.Validate(f.Rules); len(errs) > 0 {
		return f.Rules, fmt.Errorf("%d of %d rules are invalid: %w", len(errs), len(f.Rules), errors.Join(errs...))
	}
	return f.Rules, nil
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	list, err := loadRulesFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d rules valid\n", len(list))
	return nil
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	d, err := buildDeps(cmd.Context(), appConfig, logger, false)
	if err != nil {
		return err
	}
	defer d.Close()
	if d.rules == nil {
		return errors.New("rule engine is disabled (use_rule_engine: false)")
	}

	snap := d.rules.Snapshot()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tHANDLER\tSEVERITY")
	for _, r := range snap.Rules() {
		sev := string(r.Severity)
		if sev == "" {
			sev = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.IssueCode, r.HandlerType, sev)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d rules, version %d, %d skipped\n", snap.Len(), snap.Version, len(snap.Skipped))
	return nil
}

func runRulesPush(cmd *cobra.Command, args []string) error {
	if appConfig.DatabaseURL == "" {
		return errors.New("database_url is required to push rules")
	}
	list, err := loadRulesFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, appConfig.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	for i, r := range list {
		if err := database.UpsertRule(ctx, r, i); err != nil {
			return err
		}
	}
	version, err := database.BumpCacheVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ pushed %d rules, cache version %d\n", len(list), version)
	return nil
}
