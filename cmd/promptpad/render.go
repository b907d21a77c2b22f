package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/promptpad/internal/db"
	"github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
)

func newRenderCmd(a *app) *cobra.Command {
	var templateFile, contextFile string
	var library bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template file against a JSON context file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := os.ReadFile(templateFile)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}
			jsonText, err := os.ReadFile(contextFile)
			if err != nil {
				return fmt.Errorf("read context: %w", err)
			}

			var opts render.Options
			if library {
				database, err := db.New(cmd.Context(), a.cfg.DB.Driver, a.cfg.DB.DSN)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()
				opts.Source = store.NewPromptStore(database)
			}

			res := render.New(opts).Evaluate(string(tmpl), string(jsonText))
			if res.Error != "" {
				return fmt.Errorf("invalid context: %s", res.Error)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			return err
		},
	}
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "template file")
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "JSON context file")
	cmd.Flags().BoolVar(&library, "library", false, "resolve includes against the prompt library database")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("context")
	return cmd
}
