package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "List stored analyses of the same document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of analyses to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if appConfig.DatabaseURL == "" {
		return errors.New("database_url is required for history")
	}
	text, _, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, appConfig.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	ids, err := database.ListAnalysesByFingerprint(ctx, db.Fingerprint(text), historyLimit)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no stored analyses")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSCORE\tGRADE\tRULES")
	for _, id := range ids {
		rec, err := database.GetAnalysis(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Total, rec.Grade, rec.RulesVersion)
	}
	return w.Flush()
}
