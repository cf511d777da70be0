package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
)

// NewSetCommand creates the set command with subcommands
func NewSetCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Manage named fleet sets",
		Long: `Manage named fleet sets. A set is a saved list of decks; deck commands
work on the active set.

Examples:
  fleetdeck set list
  fleetdeck set save-as event-e3
  fleetdeck set use default
  fleetdeck --set event-e3 set delete`,
	}
	cmd.AddCommand(newSetListCommand(env))
	cmd.AddCommand(newSetUseCommand(env))
	cmd.AddCommand(newSetSaveAsCommand(env))
	cmd.AddCommand(newSetDeleteCommand(env))
	return cmd
}

type setRow struct {
	Name   string `json:"name" yaml:"name"`
	Decks  int    `json:"decks" yaml:"decks"`
	Active bool   `json:"active" yaml:"active"`
}

func newSetListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fleet sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			var rows []setRow
			for _, name := range run.state.Fleets.SetNames() {
				decks, _ := run.state.Fleets.Saved(name)
				rows = append(rows, setRow{Name: name, Decks: len(decks), Active: name == run.state.Fleets.Active()})
			}
			return render(env.Out, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "\tSET\tDECKS")
				for _, r := range rows {
					marker := ""
					if r.Active {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\n", marker, r.Name, r.Decks)
				}
			})
		},
	}
}

func newSetUseCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a set the default for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			st, outcome, err := run.ctrl.SwitchActive(run.ctx, run.state, args[0])
			if err != nil {
				return err
			}
			run.state = st
			if outcome != fleet.OutcomeDeclined {
				if err := rememberActiveSet(env, st.Fleets.Active()); err != nil {
					return err
				}
			}
			run.reportOutcome(outcome, fmt.Sprintf("active set %q", st.Fleets.Active()))
			return nil
		},
	}
}

func newSetSaveAsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "save-as <name>",
		Short: "Copy the active set's decks into a new or existing set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			st, outcome, err := run.ctrl.SaveAs(run.ctx, run.state, args[0])
			if err != nil {
				return err
			}
			run.state = st
			if outcome == fleet.OutcomeApplied {
				if err := rememberActiveSet(env, st.Fleets.Active()); err != nil {
					return err
				}
			}
			run.reportOutcome(outcome, fmt.Sprintf("saved set %q", args[0]))
			return nil
		},
	}
}

func newSetDeleteCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the active set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			deleted := run.state.Fleets.Active()
			st, outcome, err := run.ctrl.DeleteActive(run.ctx, run.state)
			if err != nil {
				return err
			}
			run.state = st
			if outcome == fleet.OutcomeApplied {
				if err := rememberActiveSet(env, st.Fleets.Active()); err != nil {
					return err
				}
			}
			run.reportOutcome(outcome, fmt.Sprintf("deleted set %q, active set is %q", deleted, st.Fleets.Active()))
			return nil
		},
	}
}

func rememberActiveSet(env *Env, name string) error {
	handler, err := userConfigHandler(env)
	if err != nil {
		return err
	}
	return handler.SetActiveSet(name)
}
