package brew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/brewfile/internal/logging"
)

// ErrBackendCall wraps any failure to launch brew or a non-zero exit.
var ErrBackendCall = errors.New("brew command failed")

// Backend is the set of brew operations the reconciler depends on.
type Backend interface {
	Install(ctx context.Context, manifestPath string) error
	Cleanup(ctx context.Context, manifestPath string) error
	DumpSystemState(ctx context.Context, manifestPath string) error
	ListPackages(ctx context.Context, manifestPath string, t PackageType) ([]string, error)
	Search(ctx context.Context, name string, t PackageType) ([]string, error)
	Uninstall(ctx context.Context, name string, t PackageType) error
	Untap(ctx context.Context, name string) error
	Autoremove(ctx context.Context) error
}

// Runner executes a command. When out is non-nil the command's output is
// streamed to it and the returned bytes are empty; otherwise stdout is
// captured and returned.
type Runner func(ctx context.Context, out io.Writer, name string, args ...string) ([]byte, error)

// Client runs brew and brew bundle as subprocesses.
type Client struct {
	bin string
	out io.Writer
	run Runner
}

// NewClient creates a Client for the given brew executable. An empty bin
// means "brew" from PATH.
func NewClient(bin string) *Client {
	if bin == "" {
		bin = "brew"
	}
	return &Client{
		bin: bin,
		out: os.Stdout,
		run: execRunner,
	}
}

// WithRunner replaces the command runner (useful for testing).
func (c *Client) WithRunner(r Runner) *Client {
	c.run = r
	return c
}

// WithOutput sets where streamed install and cleanup output goes.
func (c *Client) WithOutput(w io.Writer) *Client {
	c.out = w
	return c
}

// Install applies every entry in the manifest.
func (c *Client) Install(ctx context.Context, manifestPath string) error {
	_, err := c.call(ctx, c.out, "bundle", "install", "--file", manifestPath)
	return err
}

// Cleanup uninstalls everything that is not listed in the manifest.
func (c *Client) Cleanup(ctx context.Context, manifestPath string) error {
	_, err := c.call(ctx, c.out, "bundle", "cleanup", "--force", "--file", manifestPath)
	return err
}

// DumpSystemState writes the current system state as a Brewfile.
func (c *Client) DumpSystemState(ctx context.Context, manifestPath string) error {
	_, err := c.call(ctx, nil, "bundle", "dump", "--force", "--no-vscode", "--file", manifestPath)
	return err
}

// ListPackages returns the names of one package type listed in a Brewfile.
func (c *Client) ListPackages(ctx context.Context, manifestPath string, t PackageType) ([]string, error) {
	flag, err := listFlag(t)
	if err != nil {
		return nil, err
	}
	out, err := c.call(ctx, nil, "bundle", "list", flag, "--file", manifestPath)
	if err != nil {
		return nil, err
	}
	return parseLines(string(out)), nil
}

// Autoremove uninstalls orphaned dependencies.
func (c *Client) Autoremove(ctx context.Context) error {
	_, err := c.call(ctx, nil, "autoremove")
	return err
}

func (c *Client) call(ctx context.Context, out io.Writer, args ...string) ([]byte, error) {
	logging.GetLogger("brew").Debug().
		Str("command", c.bin).
		Strs("args", args).
		Msg("Executing command")
	return c.run(ctx, out, c.bin, args...)
}

func listFlag(t PackageType) (string, error) {
	switch t {
	case Tap:
		return "--tap", nil
	case Formula:
		return "--formula", nil
	case Cask:
		return "--cask", nil
	case StoreApp:
		return "--mas", nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownPackageType, t)
}

// execRunner is the production Runner backed by os/exec.
func execRunner(ctx context.Context, out io.Writer, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	command := strings.TrimSpace(name + " " + strings.Join(args, " "))

	if out != nil {
		cmd.Stdout = out
		cmd.Stderr = out
		cmd.Stdin = os.Stdin
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBackendCall, command, err)
		}
		return nil, nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v (stderr: %s)", ErrBackendCall, command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// parseLines splits command output into trimmed, non-empty lines.
func parseLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
