package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath   string
	serverURL    string
	tokenFlag    string
	setName      string
	outputFormat string
	assumeYes    bool
	verbose      bool
)

// Env is the outside world a command runs against
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// UserConfigPath overrides ~/.fleetdeck/config.json
	UserConfigPath string
}

// NewRootCommand creates the root command for the CLI
func NewRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fleetdeck",
		Short: "Fleetdeck CLI - Compose fleets from your roster",
		Long: `Fleetdeck keeps your roster, fleet sets, bonus groups and category buckets
on a fleetdeck server and edits them from the command line.

Examples:
  fleetdeck login alice
  fleetdeck roster import roster.json
  fleetdeck deck assign 1234 1 1
  fleetdeck deck shape 1 combined
  fleetdeck set save-as event-e3
  fleetdeck bonus tag 1 184`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetIn(env.In)
	rootCmd.SetOut(env.Out)
	rootCmd.SetErr(env.Err)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: search ./, ./configs, /etc/fleetdeck)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Server base URL including the API prefix")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "",
		"Token to use instead of the stored login")
	rootCmd.PersistentFlags().StringVar(&setName, "set", "",
		"Fleet set to work on (default: the stored active set)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false,
		"Answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewLoginCommand(env))
	rootCmd.AddCommand(NewLogoutCommand(env))
	rootCmd.AddCommand(NewHealthCommand(env))
	rootCmd.AddCommand(NewRosterCommand(env))
	rootCmd.AddCommand(NewCatalogCommand(env))
	rootCmd.AddCommand(NewDeckCommand(env))
	rootCmd.AddCommand(NewSetCommand(env))
	rootCmd.AddCommand(NewBonusCommand(env))
	rootCmd.AddCommand(NewCategoryCommand(env))
	rootCmd.AddCommand(NewConfigCommand(env))

	return rootCmd
}

// Execute runs the root command against the process streams
func Execute() {
	env := &Env{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := NewRootCommand(env).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
