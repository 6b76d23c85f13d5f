package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the issue catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every issue code",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show the catalog entry for an issue code; legacy codes resolve to their current code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	d, err := buildDeps(cmd.Context(), appConfig, logger, false)
	if err != nil {
		return err
	}
	defer d.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSEVERITY\tWEIGHT\tCATEGORY")
	for _, e := range d.catalog.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.IssueCode, e.Severity, e.Weight, e.Category)
	}
	return w.Flush()
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd.Context(), appConfig, logger, false)
	if err != nil {
		return err
	}
	defer d.Close()

	entry, ok := d.catalog.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown issue code: %s", args[0])
	}
	return writeJSON(cmd.OutOrStdout(), entry)
}
