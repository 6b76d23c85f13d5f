package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a plain-text résumé",
	Long:  "Analyze a plain-text résumé and print its issues, structure summary and score. Use - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeFormat    string
	analyzeVerbose   bool
	analyzeModel     bool
	analyzeFailUnder int
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text or json")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Also print ingestion details and the structure summary")
	analyzeCmd.Flags().BoolVar(&analyzeModel, "ai-features", false, "Extract scoring features with the hosted model (requires GEMINI_API_KEY)")
	analyzeCmd.Flags().IntVar(&analyzeFailUnder, "fail-under", 0, "Exit with an error when the score is below this value")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := checkFormat(analyzeFormat); err != nil {
		return err
	}
	ctx := cmd.Context()

	text, meta, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	d, err := buildDeps(ctx, appConfig, logger, analyzeModel)
	if err != nil {
		return err
	}
	defer d.Close()

	report, err := d.analyzer.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if analyzeFormat == "json" {
		if err := writeJSON(out, report.AnalysisResult); err != nil {
			return err
		}
	} else {
		p := observability.NewPrinter(out)
		if analyzeVerbose {
			p.PrintStructure(report.StructureSummary)
		}
		p.PrintScore(report.Score)
		p.PrintIssues(report.Issues)
	}

	if analyzeVerbose {
		errOut := cmd.ErrOrStderr()
		if meta.Changed() {
			data, err := meta.ToJSON()
			if err == nil {
				fmt.Fprintf(errOut, "Ingestion: %s\n", data)
			}
		}
		fmt.Fprintf(errOut, "Features: %s, rules version %d\n", report.FeatureSource, report.RulesVersion)
	}

	if analyzeFailUnder > 0 && report.Score.Total < analyzeFailUnder {
		return fmt.Errorf("score %d is below %d", report.Score.Total, analyzeFailUnder)
	}
	return nil
}

// readDocument reads and normalizes a file, or stdin for "-".
func readDocument(cmd *cobra.Command, path string) (string, *ingestion.Metadata, error) {
	if path == "-" {
		text, meta, err := ingestion.ReadDocument(cmd.InOrStdin())
		if err != nil {
			return "", nil, err
		}
		meta.Source = "stdin"
		return text, meta, nil
	}
	return ingestion.ReadFile(path)
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
