package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
)

// NewBonusCommand creates the bonus command with subcommands
func NewBonusCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bonus",
		Short: "Tag unit types with bonus notes",
		Long: `Bonus groups attach a note (e.g. "x1.2 vs E3 boss") to a set of unit types.
Groups are numbered from 1. Every change is saved immediately.

Examples:
  fleetdeck bonus add
  fleetdeck bonus text 1 "x1.2 vs E3 boss"
  fleetdeck bonus tag 1 184
  fleetdeck bonus export bonus.json`,
	}
	cmd.AddCommand(newBonusListCommand(env))
	cmd.AddCommand(newBonusAddCommand(env))
	cmd.AddCommand(newBonusRemoveCommand(env))
	cmd.AddCommand(newBonusTextCommand(env))
	cmd.AddCommand(newBonusTagCommand(env))
	cmd.AddCommand(newBonusUntagCommand(env))
	cmd.AddCommand(newBonusExportCommand(env))
	cmd.AddCommand(newBonusImportCommand(env))
	return cmd
}

type bonusRow struct {
	Index   int      `json:"index" yaml:"index"`
	Text    string   `json:"text" yaml:"text"`
	Members []string `json:"members" yaml:"members"`
}

func newBonusListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bonus groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			var rows []bonusRow
			for i, g := range run.state.Bonus.Groups() {
				members := make([]string, 0, len(g.Members))
				for _, ref := range g.Members {
					members = append(members, fmt.Sprintf("%s(%d)", run.state.Catalog.Name(ref), ref))
				}
				rows = append(rows, bonusRow{Index: i + 1, Text: g.Text, Members: members})
			}
			return render(env.Out, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "#\tTEXT\tMEMBERS")
				fmt.Fprintln(w, "-\t----\t-------")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\n", r.Index, dash(strings.ReplaceAll(r.Text, "\n", " / ")), strings.Join(r.Members, ", "))
				}
			})
		},
	}
}

// mutateBonus loads a session, applies one bonus edit and saves the groups
func mutateBonus(env *Env, edit func(run *sessionRun) (session.State, string, error)) error {
	run, err := openSession(context.Background(), env)
	if err != nil {
		return err
	}
	st, what, err := edit(run)
	if err != nil {
		return err
	}
	if err := run.ctrl.SaveBonus(run.ctx, st); err != nil {
		return err
	}
	run.state = st
	run.printf("✓ %s\n", what)
	return nil
}

// groupAt resolves a 1-based group argument
func groupAt(run *sessionRun, arg string) (int, string, error) {
	index, err := parseIndex(arg, "group")
	if err != nil {
		return 0, "", err
	}
	groups := run.state.Bonus.Groups()
	if index >= len(groups) {
		return 0, "", fmt.Errorf("no bonus group %d (have %d)", index+1, len(groups))
	}
	return index, groups[index].ID, nil
}

func newBonusAddCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Append a bonus group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBonus(env, func(run *sessionRun) (session.State, string, error) {
				st, _ := run.ctrl.AddBonusGroup(run.state)
				index := st.Bonus.Len() - 1
				if len(args) == 1 {
					var err error
					if st, err = run.ctrl.SetBonusText(st, index, args[0]); err != nil {
						return st, "", err
					}
				}
				return st, fmt.Sprintf("added bonus group %d", index+1), nil
			})
		},
	}
}

func newBonusRemoveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <group>",
		Short: "Delete a bonus group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			index, _, err := groupAt(run, args[0])
			if err != nil {
				return err
			}
			st, removed, err := run.ctrl.RemoveBonusGroup(run.ctx, run.state, index)
			if err != nil {
				return err
			}
			if !removed {
				run.reportOutcome(fleet.OutcomeDeclined, fmt.Sprintf("remove bonus group %d", index+1))
				return nil
			}
			if err := run.ctrl.SaveBonus(run.ctx, st); err != nil {
				return err
			}
			run.printf("✓ removed bonus group %d\n", index+1)
			return nil
		},
	}
}

func newBonusTextCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "text <group> <text>",
		Short: "Set a group's note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBonus(env, func(run *sessionRun) (session.State, string, error) {
				index, _, err := groupAt(run, args[0])
				if err != nil {
					return run.state, "", err
				}
				st, err := run.ctrl.SetBonusText(run.state, index, args[1])
				return st, fmt.Sprintf("bonus group %d note updated", index+1), err
			})
		},
	}
}

func newBonusTagCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <group> <reference-id>...",
		Short: "Add unit types to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBonus(env, func(run *sessionRun) (session.State, string, error) {
				_, groupID, err := groupAt(run, args[0])
				if err != nil {
					return run.state, "", err
				}
				st := run.state.WithMode(session.ModeTagging)
				for _, arg := range args[1:] {
					ref, err := parsePositive(arg, "reference id")
					if err != nil {
						return run.state, "", err
					}
					var outcome fleet.Outcome
					st, outcome = run.ctrl.Drop(run.ctx, st, dnd.CatalogID(ref), dnd.GroupID(groupID))
					if outcome != fleet.OutcomeApplied {
						return run.state, "", fmt.Errorf("cannot tag %d", ref)
					}
				}
				return st, fmt.Sprintf("tagged %d unit type(s)", len(args)-1), nil
			})
		},
	}
}

func newBonusUntagCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <group> <reference-id>",
		Short: "Remove a unit type from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBonus(env, func(run *sessionRun) (session.State, string, error) {
				_, groupID, err := groupAt(run, args[0])
				if err != nil {
					return run.state, "", err
				}
				ref, err := parsePositive(args[1], "reference id")
				if err != nil {
					return run.state, "", err
				}
				st, err := run.ctrl.RemoveBonusMember(run.state, groupID, ref)
				return st, fmt.Sprintf("untagged %d", ref), err
			})
		},
	}
}

func newBonusExportCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the groups as an exchange file (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			data, err := run.ctrl.ExportBonus(run.state)
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				_, err := fmt.Fprintln(env.Out, string(data))
				return err
			}
			if err := os.WriteFile(args[0], append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			run.printf("✓ exported bonus groups to %s\n", args[0])
			return nil
		},
	}
}

func newBonusImportCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the groups from an exchange file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(env, args[0])
			if err != nil {
				return err
			}
			return mutateBonus(env, func(run *sessionRun) (session.State, string, error) {
				st, count, err := run.ctrl.ImportBonus(run.state, data)
				return st, fmt.Sprintf("imported %d group(s) tagging %d unit type(s)", st.Bonus.Len(), count), err
			})
		},
	}
}
