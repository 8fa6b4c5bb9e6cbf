package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the available themes and formats",
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	renderer, err := loadRenderer()
	if err != nil {
		return err
	}
	catalog := renderer.Catalog()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "THEME\tNAME\tALIASES")
	for _, t := range catalog.Themes {
		id := t.ID
		if id == catalog.Defaults.Theme {
			id += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, t.Name, strings.Join(t.Aliases, ","))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FORMAT\tNAME\tKIND")
	for _, f := range catalog.Formats {
		id := f.ID
		if id == catalog.Defaults.Format {
			id += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, f.Name, f.Kind)
	}
	return w.Flush()
}
