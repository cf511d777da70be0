package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/category"
)

// NewCategoryCommand creates the category command with subcommands
func NewCategoryCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"bucket"},
		Short:   "Configure category buckets",
		Long: `Category buckets group reference categories under one name for filtering.
Categories no bucket claims fall into the implicit "Other" bucket.
Buckets are numbered from 1. Every change is saved immediately.

Examples:
  fleetdeck category add Destroyers
  fleetdeck category set 1 2
  fleetdeck category use Destroyers`,
	}
	cmd.AddCommand(newCategoryListCommand(env))
	cmd.AddCommand(newCategoryAddCommand(env))
	cmd.AddCommand(newCategoryRenameCommand(env))
	cmd.AddCommand(newCategorySetCommand(env))
	cmd.AddCommand(newCategoryRemoveCommand(env))
	cmd.AddCommand(newCategoryUseCommand(env))
	return cmd
}

type bucketRow struct {
	Index      int    `json:"index,omitempty" yaml:"index,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Categories []int  `json:"categories" yaml:"categories"`
	InRoster   bool   `json:"in_roster" yaml:"in_roster"`
}

func newCategoryListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			available := session.RosterBuckets(run.state)
			var rows []bucketRow
			for i, b := range run.state.Buckets.Buckets {
				rows = append(rows, bucketRow{Index: i + 1, Name: b.Name, Categories: b.CategoryIDs, InRoster: contains(available, b.Name)})
			}
			rows = append(rows, bucketRow{Name: category.RemainderName, InRoster: contains(available, category.RemainderName)})

			return render(env.Out, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "#\tNAME\tCATEGORIES\tIN ROSTER")
				fmt.Fprintln(w, "-\t----\t----------\t---------")
				for _, r := range rows {
					index := "-"
					if r.Index > 0 {
						index = fmt.Sprint(r.Index)
					}
					ids := make([]string, len(r.Categories))
					for i, id := range r.Categories {
						ids[i] = fmt.Sprint(id)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", index, r.Name, dash(strings.Join(ids, ",")), r.InRoster)
				}
			})
		},
	}
}

// mutateBuckets loads a session, applies one bucket edit and saves the configuration
func mutateBuckets(env *Env, what string, edit func(run *sessionRun) (session.State, error)) error {
	run, err := openSession(context.Background(), env)
	if err != nil {
		return err
	}
	st, err := edit(run)
	if err != nil {
		return err
	}
	if err := run.ctrl.SaveBuckets(run.ctx, st); err != nil {
		return err
	}
	run.state = st
	run.printf("✓ %s\n", what)
	return nil
}

func newCategoryAddCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Append an empty bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBuckets(env, fmt.Sprintf("added bucket %q", args[0]), func(run *sessionRun) (session.State, error) {
				return run.ctrl.AddBucket(run.state, args[0])
			})
		},
	}
}

func newCategoryRenameCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <bucket> <name>",
		Short: "Rename a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "bucket")
			if err != nil {
				return err
			}
			return mutateBuckets(env, fmt.Sprintf("bucket %d renamed to %q", index+1, args[1]), func(run *sessionRun) (session.State, error) {
				return run.ctrl.RenameBucket(run.state, index, args[1])
			})
		},
	}
}

func newCategorySetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <bucket> [category-id]...",
		Short: "Replace the categories a bucket claims",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "bucket")
			if err != nil {
				return err
			}
			ids := make([]int, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parsePositive(arg, "category id")
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return mutateBuckets(env, fmt.Sprintf("bucket %d claims %d categories", index+1, len(ids)), func(run *sessionRun) (session.State, error) {
				return run.ctrl.SetBucketCategories(run.state, index, ids)
			})
		},
	}
}

func newCategoryRemoveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bucket>",
		Short: "Delete a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "bucket")
			if err != nil {
				return err
			}
			return mutateBuckets(env, fmt.Sprintf("removed bucket %d", index+1), func(run *sessionRun) (session.State, error) {
				return run.ctrl.RemoveBucket(run.state, index)
			})
		},
	}
}

func newCategoryUseCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "use [name]",
		Short: "Set the default bucket for roster listings (no name clears it)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			if _, err := run.ctrl.SelectBucket(run.state, name); err != nil {
				return err
			}
			handler, err := userConfigHandler(env)
			if err != nil {
				return err
			}
			if err := handler.SetDefaultBucket(name); err != nil {
				return err
			}
			if name == "" {
				run.printf("✓ default bucket cleared\n")
			} else {
				run.printf("✓ default bucket is %q\n", name)
			}
			return nil
		},
	}
}
