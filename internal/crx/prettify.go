package crx

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Prettifier reformats the sources of an unpacked extension in place.
type Prettifier interface {
	Format(dir string) error
}

// CommandPrettifier runs an external formatter with dir as its last argument.
type CommandPrettifier struct {
	Command string
	Args    []string
}

// Format runs the formatter. The combined output is attached to the error.
func (p CommandPrettifier) Format(dir string) error {
	args := append(append([]string{}, p.Args...), dir)
	cmd := exec.Command(p.Command, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.Command, err, strings.TrimSpace(out.String()))
	}
	return nil
}

// NopPrettifier leaves sources untouched.
type NopPrettifier struct{}

// Format does nothing.
func (NopPrettifier) Format(string) error { return nil }
