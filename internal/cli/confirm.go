package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ReadlineConfirmer asks yes/no questions on the REPL's terminal.
type ReadlineConfirmer struct {
	rl *readline.Instance
}

func NewReadlineConfirmer(rl *readline.Instance) *ReadlineConfirmer {
	return &ReadlineConfirmer{rl: rl}
}

// Confirm treats anything but y/yes as a no; Ctrl-C and EOF decline.
func (c *ReadlineConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.rl.SetPrompt(prompt + " [y/N] ")
	line, err := c.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
