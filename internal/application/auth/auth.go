package auth

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
)

// ErrUnauthenticated is returned for a per-user request without a username
var ErrUnauthenticated = errors.New("request is not bound to a user")

// Context keys for passing authentication data through context
type authContextKey int

const (
	usernameKey authContextKey = iota + 1000 // Offset from logger keys
)

// WithUsername injects the authenticated user into the context
func WithUsername(ctx context.Context, username player.Username) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext extracts the authenticated user from context
// Returns an error if no user is bound to the context
func UsernameFromContext(ctx context.Context) (player.Username, error) {
	username, ok := ctx.Value(usernameKey).(player.Username)
	if !ok || username.IsZero() {
		return player.Username{}, fmt.Errorf("username not found in context")
	}
	return username, nil
}

// UsernameMiddleware rejects per-user requests that carry a zero username and
// binds the username to the context for the handlers below it.
// Requests without a Username field (login) pass through untouched.
func UsernameMiddleware() mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		username, found := extractUsername(request)
		if found {
			if username.IsZero() {
				return nil, fmt.Errorf("%T: %w", request, ErrUnauthenticated)
			}
			ctx = WithUsername(ctx, username)
		}

		// Continue to next middleware or handler
		return next(ctx, request)
	}
}

// extractUsername uses reflection to read a player.Username field named Username
func extractUsername(request mediator.Request) (player.Username, bool) {
	requestValue := reflect.ValueOf(request)
	if requestValue.Kind() == reflect.Ptr {
		requestValue = requestValue.Elem()
	}

	if requestValue.Kind() != reflect.Struct {
		return player.Username{}, false
	}

	field := requestValue.FieldByName("Username")
	if !field.IsValid() {
		return player.Username{}, false
	}

	username, ok := field.Interface().(player.Username)
	return username, ok
}
