package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/roster"
)

// NewRosterCommand creates the roster command with subcommands
func NewRosterCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List and import owned units",
	}
	cmd.AddCommand(newRosterListCommand(env))
	cmd.AddCommand(newRosterImportCommand(env))
	return cmd
}

func newRosterListCommand(env *Env) *cobra.Command {
	var bucket, sortMode string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List owned units",
		Long: `List owned units filtered by category bucket.

Sort modes:
  lv     level descending, then reference id
  stype  category, then level descending
  id     reference id

Examples:
  fleetdeck roster list
  fleetdeck roster list --bucket Destroyers --sort stype`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			mode, err := roster.ParseSortMode(sortMode)
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = run.userCfg.DefaultBucket
			}
			st, err := run.ctrl.SelectBucket(run.state.WithSort(mode), bucket)
			if err != nil {
				return err
			}

			rows := session.RosterView(st)
			return render(env.Out, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tLV\tCATEGORY\tIN DECK\tBONUS")
				fmt.Fprintln(w, "--\t----\t--\t--------\t-------\t-----")
				for _, r := range rows {
					used := ""
					if r.Used {
						used = "yes"
					}
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
						r.InstanceID, r.Name, r.Level, dash(r.CategoryName), used, r.Bonus)
				}
				fmt.Fprintf(w, "\n%d units (buckets with units: %v)\n", len(rows), session.RosterBuckets(st))
			})
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Category bucket to show")
	cmd.Flags().StringVar(&sortMode, "sort", string(roster.SortByLevel), "Sort mode: lv, stype, id")
	return cmd
}

func newRosterImportCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the roster with an exported unit list",
		Long: `Replace the roster with a unit list exported from the game. The file may
be a bare JSON array or carry the svdata= prefix and api_data envelope.

If the units carry no instance ids, ids are generated and the working decks
are reset (you are asked first).

Example:
  fleetdeck roster import roster.json
  pbpaste | fleetdeck roster import -`,
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

			st, outcome, err := run.ctrl.ImportRoster(run.ctx, run.state, string(text))
			if err != nil {
				return err
			}
			run.state = st
			if outcome == fleet.OutcomeApplied && st.Fleets.Dirty() {
				if err := run.saveDecks(); err != nil {
					return err
				}
			}
			run.reportOutcome(outcome, fmt.Sprintf("roster import (%d units)", st.Roster.Len()))
			return nil
		},
	}
}
