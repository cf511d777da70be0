package player

import (
	"regexp"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// usernamePattern restricts usernames to characters that are safe as a storage key segment
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Username is a value object identifying a player. It doubles as the bearer token:
// login returns it verbatim and every later request presents it unchanged.
type Username struct {
	value string
}

// NewUsername normalizes a login name (trim + lower-case) and validates it
func NewUsername(raw string) (Username, error) {
	return ParseToken(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseToken validates a token presented on a request. Tokens are not normalized:
// they must already be in the form returned by login.
func ParseToken(token string) (Username, error) {
	if token == "" {
		return Username{}, shared.NewValidationError("username", "username is required")
	}
	if !usernamePattern.MatchString(token) {
		return Username{}, shared.NewValidationError("username", "username contains characters outside [a-zA-Z0-9_-]")
	}
	return Username{value: token}, nil
}

// MustNewUsername creates a Username, panicking if invalid.
// Use only for constants and tests.
func MustNewUsername(raw string) Username {
	u, err := NewUsername(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// Value returns the token form of the username
func (u Username) Value() string {
	return u.value
}

func (u Username) String() string {
	return u.value
}

// IsZero reports whether the username is uninitialized
func (u Username) IsZero() bool {
	return u.value == ""
}

// Equals checks if two usernames are equal
func (u Username) Equals(other Username) bool {
	return u.value == other.value
}
