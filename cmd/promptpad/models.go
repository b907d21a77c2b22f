package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable models",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.cfg.ModelCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tREASONING SUPPRESSED\tDEFAULT")
			for _, m := range catalog.Models() {
				def := ""
				if m.ID == catalog.Default().ID {
					def = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", m.ID, m.Label, m.SuppressReasoning, def)
			}
			return w.Flush()
		},
	}
}
