package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List and import reference data",
	}
	cmd.AddCommand(newCatalogListCommand(env))
	cmd.AddCommand(newCatalogImportCommand(env))
	cmd.AddCommand(newCatalogCategoriesCommand(env))
	return cmd
}

func newCatalogListCommand(env *Env) *cobra.Command {
	var bucket string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List playable unit types in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			st, err := run.ctrl.SelectBucket(run.state, bucket)
			if err != nil {
				return err
			}

			rows := session.CatalogView(st)
			return render(env.Out, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "REF\tNAME\tCATEGORY\tBONUS")
				fmt.Fprintln(w, "---\t----\t--------\t-----")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ReferenceID, r.Name, dash(r.CategoryName), r.Bonus)
				}
			})
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Category bucket to show")
	return cmd
}

func newCatalogCategoriesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List reference categories (for bucket configuration)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			categories := run.state.Catalog.Categories()
			return render(env.Out, categories, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME")
				fmt.Fprintln(w, "--\t----")
				for _, c := range categories {
					fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
				}
			})
		},
	}
}

func newCatalogImportCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Upload the game's master data",
		Long: `Upload the game's master data. The server keeps only the unit and
category tables; the svdata= prefix and api_data envelope are accepted.

Example:
  fleetdeck catalog import api_start2.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(env, args[0])
			if err != nil {
				return err
			}
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			st, err := run.ctrl.ImportCatalog(run.ctx, run.state, string(text))
			if err != nil {
				return err
			}
			run.printf("✓ Catalog imported (%d entries)\n", st.Catalog.Len())
			return nil
		},
	}
}
