package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Fleetdeck configuration settings.

Configuration is loaded from multiple sources with priority:
1. Command line flags (--server, --token, --set)
2. User preferences (~/.fleetdeck/config.json)
3. Environment variables (FLEETDECK_* prefix)
4. Config file (config.yaml)
5. Default values

Examples:
  fleetdeck config show
  fleetdeck config set-server http://fleet.example:3001/api`,
	}

	cmd.AddCommand(newConfigShowCommand(env))
	cmd.AddCommand(newConfigSetServerCommand(env))

	return cmd
}

func newConfigShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := env.Out
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			clientCfg, userCfg, handler, err := clientSettings(env)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Fleetdeck Configuration")
			fmt.Fprintln(out, "=======================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", handler.GetConfigPath())
			if userCfg.Token != "" {
				fmt.Fprintf(out, "  Logged in as:     %s\n", userCfg.Token)
			} else {
				fmt.Fprintf(out, "  Logged in as:     (not logged in)\n")
			}
			fmt.Fprintf(out, "  Active set:       %s\n", dash(userCfg.ActiveSet))
			fmt.Fprintf(out, "  Default bucket:   %s\n", dash(userCfg.DefaultBucket))

			fmt.Fprintln(out, "\nClient:")
			fmt.Fprintf(out, "  Server URL:       %s\n", clientCfg.BaseURL)
			fmt.Fprintf(out, "  Timeout:          %s\n", clientCfg.Timeout)
			fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n",
				clientCfg.RateLimit.Requests, clientCfg.RateLimit.Burst)

			fmt.Fprintln(out, "\nServer:")
			fmt.Fprintf(out, "  Address:          %s%s\n", cfg.Server.Address, cfg.Server.APIPrefix)
			fmt.Fprintf(out, "  Body Limit:       %d bytes\n", cfg.Server.BodyLimit)
			fmt.Fprintf(out, "  Storage:          %s\n", cfg.Storage.Backend)
			if cfg.Storage.Backend == "file" {
				fmt.Fprintf(out, "  Data Dir:         %s\n", cfg.Storage.DataDir)
			}

			if cfg.Storage.Backend == "database" {
				fmt.Fprintln(out, "\nDatabase:")
				fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
				switch {
				case cfg.Database.URL != "":
					fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
				case cfg.Database.Type == "sqlite":
					fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
				default:
					fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
					fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
					fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
					fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
				}
				fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetServerCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Remember the server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid server URL %q", args[0])
			}
			handler, err := userConfigHandler(env)
			if err != nil {
				return err
			}
			if err := handler.SetServerURL(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "✓ Server URL set to %s\n", args[0])
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "****")
	return u.String()
}
