package commands

import (
	"context"
	"fmt"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
)

// LoginCommand exchanges a username for the token used on every later request
type LoginCommand struct {
	Username string
}

// LoginResponse carries the issued token (the normalized username)
type LoginResponse struct {
	Token string
}

// LoginHandler handles the Login command. There are no accounts: any valid
// username is accepted and identifies its own documents.
type LoginHandler struct{}

// NewLoginHandler creates a new LoginHandler
func NewLoginHandler() *LoginHandler {
	return &LoginHandler{}
}

// Handle executes the Login command
func (h *LoginHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*LoginCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoginCommand")
	}

	username, err := player.NewUsername(cmd.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: username.Value()}, nil
}
