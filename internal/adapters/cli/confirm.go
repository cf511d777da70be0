package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// PromptConfirmer asks on the terminal and reads y/yes from input. Anything
// else, including end of input, declines.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a confirmer reading answers from in
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and waits for an answer
func (c *PromptConfirmer) Confirm(ctx context.Context, prompt shared.Prompt) bool {
	if ctx.Err() != nil {
		return false
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt.Message)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
