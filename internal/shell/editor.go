// Package shell launches interactive programs on behalf of the user.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither the environment nor the settings name
// an editor.
const DefaultEditor = "nano"

// ResolveEditor picks the editor command: $VISUAL, then $EDITOR, then the
// configured fallback, then DefaultEditor.
func ResolveEditor(configured string) string {
	for _, candidate := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR"), configured} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return DefaultEditor
}

// Editor runs an editor command against a file. The command may carry
// arguments, as in "code --wait".
type Editor struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewEditor returns an Editor attached to the process's terminal.
func NewEditor(command string) *Editor {
	return &Editor{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Open blocks until the editor exits.
func (e *Editor) Open(ctx context.Context, path string) error {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured")
	}

	args := append(fields[1:], path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", fields[0], err)
	}
	return nil
}
