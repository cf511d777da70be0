package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/application/session"
	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
)

// NewDeckCommand creates the deck command with subcommands.
// Decks and slots are numbered from 1 on the command line.
func NewDeckCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Edit the decks of the active fleet set",
		Long: `Edit the decks of the active fleet set. Every change is saved to the
active set immediately. Use --set to work on another set.

Examples:
  fleetdeck deck list
  fleetdeck deck assign 1234 1 1
  fleetdeck deck assign 1234 2 3 --escort
  fleetdeck deck shape 2 extended`,
	}

	cmd.AddCommand(newDeckListCommand(env))
	cmd.AddCommand(newDeckAssignCommand(env))
	cmd.AddCommand(newDeckClearCommand(env))
	cmd.AddCommand(newDeckShapeCommand(env))
	cmd.AddCommand(newDeckAddCommand(env))
	cmd.AddCommand(newDeckRemoveCommand(env))
	cmd.AddCommand(newDeckRenameCommand(env))
	cmd.AddCommand(newDeckAddSlotCommand(env))
	cmd.AddCommand(newDeckRemoveSlotCommand(env))
	return cmd
}

func newDeckListCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list [deck]",
		Short: "Show decks with their units",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}

			views := session.RenderDecks(run.state)
			if len(args) == 1 {
				index, err := parseIndex(args[0], "deck")
				if err != nil {
					return err
				}
				view, err := session.RenderDeck(run.state, index)
				if err != nil {
					return err
				}
				views = []session.DeckView{view}
			}

			return render(env.Out, views, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Set: %s\n", run.state.Fleets.Active())
				for _, v := range views {
					fmt.Fprintf(w, "\n#%d %s [%s]\n", v.Index+1, v.Name, v.Shape)
					fmt.Fprintln(w, "SLOT\tID\tNAME\tLV")
					for s, section := range v.Sections {
						for i, slot := range section {
							label := strconv.Itoa(i + 1)
							if len(v.Sections) > 1 {
								label = fmt.Sprintf("%s/%d", fleet.Section(s), i+1)
							}
							fmt.Fprintf(w, "%s\t%s\n", label, slotColumns(slot))
						}
					}
				}
			})
		},
	}
}

func slotColumns(slot session.SlotView) string {
	switch {
	case slot.InstanceID == 0:
		return "-\t\t"
	case slot.Missing:
		return fmt.Sprintf("%d\t(not in roster)\t", slot.InstanceID)
	}
	return fmt.Sprintf("%d\t%s\t%d", slot.InstanceID, slot.Name, slot.Level)
}

// coordinate builds a slot address from 1-based deck and slot arguments
func coordinate(deckArg, slotArg string, escort bool) (fleet.Coordinate, error) {
	deck, err := parseIndex(deckArg, "deck")
	if err != nil {
		return fleet.Coordinate{}, err
	}
	slot, err := parseIndex(slotArg, "slot")
	if err != nil {
		return fleet.Coordinate{}, err
	}
	section := fleet.SectionMain
	if escort {
		section = fleet.SectionEscort
	}
	return fleet.Coordinate{Deck: deck, Section: section, Slot: slot}, nil
}

func newDeckAssignCommand(env *Env) *cobra.Command {
	var escort bool

	cmd := &cobra.Command{
		Use:   "assign <instance-id> <deck> <slot>",
		Short: "Put a unit into a slot",
		Long: `Put an owned unit into a slot.

Moving a unit inside its deck swaps it with the slot's occupant. A unit that
already sits in another deck or set is duplicated after confirmation.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePositive(args[0], "instance id")
			if err != nil {
				return err
			}
			at, err := coordinate(args[1], args[2], escort)
			if err != nil {
				return err
			}
			run, err := openSession(context.Background(), env)
			if err != nil {
				return err
			}
			if _, ok := run.state.Roster.Find(id); !ok {
				return fmt.Errorf("unit %d is not in the roster", id)
			}

			st, outcome := run.ctrl.Drop(run.ctx, run.state, dnd.UnitID(id), dnd.SlotID(at))
			run.state = st
			if outcome == fleet.OutcomeRejected {
				return fmt.Errorf("cannot place unit %d at %s", id, at)
			}
			if st.Fleets.Dirty() {
				if err := run.saveDecks(); err != nil {
					return err
				}
			}
			run.reportOutcome(outcome, fmt.Sprintf("unit %d at %s", id, at))
			return nil
		},
	}

	cmd.Flags().BoolVar(&escort, "escort", false, "Address the escort section of a combined deck")
	return cmd
}

func newDeckClearCommand(env *Env) *cobra.Command {
	var escort bool

	cmd := &cobra.Command{
		Use:   "clear <deck> <slot>",
		Short: "Empty a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := coordinate(args[0], args[1], escort)
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, err := run.ctrl.RemoveUnit(run.state, at)
				return st, fleet.OutcomeApplied, fmt.Sprintf("cleared %s", at), err
			})
		},
	}

	cmd.Flags().BoolVar(&escort, "escort", false, "Address the escort section of a combined deck")
	return cmd
}

func newDeckShapeCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "shape <deck> <standard|extended|combined>",
		Short: "Change a deck's formation shape",
		Long: `Change a deck's formation shape. Units keep their order; units that no
longer fit are dropped after confirmation.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "deck")
			if err != nil {
				return err
			}
			shape, err := fleet.ParseShape(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, outcome, err := run.ctrl.ChangeShape(run.ctx, run.state, index, shape)
				return st, outcome, fmt.Sprintf("deck %d is %s", index+1, shape), err
			})
		},
	}
}

func newDeckAddCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Append an empty deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st := run.ctrl.AddDeck(run.state)
				deck, _ := st.Fleets.Deck(st.CurrentDeck)
				return st, fleet.OutcomeApplied, fmt.Sprintf("added deck %d %q", st.CurrentDeck+1, deck.Name), nil
			})
		},
	}
}

func newDeckRemoveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <deck>",
		Short: "Delete a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "deck")
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, outcome, err := run.ctrl.RemoveDeck(run.ctx, run.state, index)
				return st, outcome, fmt.Sprintf("removed deck %d", index+1), err
			})
		},
	}
}

func newDeckRenameCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <deck> <name>",
		Short: "Rename a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "deck")
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, err := run.ctrl.RenameDeck(run.state, index, args[1])
				return st, fleet.OutcomeApplied, fmt.Sprintf("deck %d renamed to %q", index+1, args[1]), err
			})
		},
	}
}

func newDeckAddSlotCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add-slot <deck>",
		Short: "Grow a standard deck to seven slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "deck")
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, err := run.ctrl.AddSlot(run.state, index)
				return st, fleet.OutcomeApplied, fmt.Sprintf("deck %d has seven slots", index+1), err
			})
		},
	}
}

func newDeckRemoveSlotCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-slot <deck>",
		Short: "Shrink an extended deck to six slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0], "deck")
			if err != nil {
				return err
			}
			return mutateDecks(env, func(run *sessionRun) (session.State, fleet.Outcome, string, error) {
				st, outcome, err := run.ctrl.RemoveSlot(run.ctx, run.state, index)
				return st, outcome, fmt.Sprintf("deck %d has six slots", index+1), err
			})
		},
	}
}

// mutateDecks loads a session, applies one deck edit and saves the active set
// when the edit changed it
func mutateDecks(env *Env, edit func(run *sessionRun) (session.State, fleet.Outcome, string, error)) error {
	run, err := openSession(context.Background(), env)
	if err != nil {
		return err
	}

	st, outcome, what, err := edit(run)
	if err != nil {
		return err
	}
	run.state = st
	if st.Fleets.Dirty() {
		if err := run.saveDecks(); err != nil {
			return err
		}
	}
	run.reportOutcome(outcome, what)
	return nil
}
