package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kantai-tool/fleetdeck/internal/adapters/api"
)

// NewLoginCommand creates the login command
func NewLoginCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the token",
		Long: `Log in with a username. There are no passwords: the username identifies
your documents on the server. It is trimmed and lower-cased.

Example:
  fleetdeck login alice
  fleetdeck --server http://fleet.example:3001/api login alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, _, handler, err := clientSettings(env)
			if err != nil {
				return err
			}

			client := api.NewFleetdeckClient(clientCfg, "")
			token, err := client.Login(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := handler.SetToken(token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}
			if serverURL != "" {
				if err := handler.SetServerURL(serverURL); err != nil {
					return fmt.Errorf("failed to store server URL: %w", err)
				}
			}

			fmt.Fprintf(env.Out, "✓ Logged in as %s\n", token)
			return nil
		},
	}
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := userConfigHandler(env)
			if err != nil {
				return err
			}
			if err := handler.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "✓ Logged out")
			return nil
		},
	}
}

// NewHealthCommand creates the health command
func NewHealthCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, _, _, err := clientSettings(env)
			if err != nil {
				return err
			}
			if err := api.NewFleetdeckClient(clientCfg, "").Health(context.Background()); err != nil {
				return fmt.Errorf("server %s is not healthy: %w", clientCfg.BaseURL, err)
			}
			fmt.Fprintf(env.Out, "✓ Server %s is healthy\n", clientCfg.BaseURL)
			return nil
		},
	}
}
