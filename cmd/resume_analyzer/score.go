package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <features.json>",
	Short: "Score a feature record",
	Long:  "Score a JSON feature record without analyzing text, e.g. one produced by an external extractor. Use - to read from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var scoreFormat string

func init() {
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "text", "Output format: text or json")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := checkFormat(scoreFormat); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read features: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse features JSON: %w", err)
	}
	features, err := scoring.FeaturesFromMap(raw)
	if err != nil {
		return err
	}

	score := scoring.Default().Score(features)
	if scoreFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), score)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintScore(score)
	return nil
}
