package brew

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Runner that captures command lines instead of executing them.
type recorder struct {
	commands [][]string
	streamed []bool
	output   map[string]string
	fail     map[string]bool
}

func newRecorder() *recorder {
	return &recorder{output: map[string]string{}, fail: map[string]bool{}}
}

func (r *recorder) run(_ context.Context, out io.Writer, name string, args ...string) ([]byte, error) {
	line := append([]string{name}, args...)
	r.commands = append(r.commands, line)
	r.streamed = append(r.streamed, out != nil)
	key := strings.Join(args, " ")
	if r.fail[key] {
		return nil, fmt.Errorf("%w: %s: exit status 1", ErrBackendCall, key)
	}
	return []byte(r.output[key]), nil
}

func (r *recorder) last() []string {
	return r.commands[len(r.commands)-1]
}

func TestClientCommandLines(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	c := NewClient("").WithRunner(rec.run).WithOutput(io.Discard)

	tests := []struct {
		name   string
		call   func() error
		want   []string
		stream bool
	}{
		{"install", func() error { return c.Install(ctx, "/tmp/Brewfile") },
			[]string{"brew", "bundle", "install", "--file", "/tmp/Brewfile"}, true},
		{"cleanup", func() error { return c.Cleanup(ctx, "/tmp/Brewfile") },
			[]string{"brew", "bundle", "cleanup", "--force", "--file", "/tmp/Brewfile"}, true},
		{"dump", func() error { return c.DumpSystemState(ctx, "/tmp/x.brewfile") },
			[]string{"brew", "bundle", "dump", "--force", "--no-vscode", "--file", "/tmp/x.brewfile"}, false},
		{"autoremove", func() error { return c.Autoremove(ctx) },
			[]string{"brew", "autoremove"}, false},
		{"uninstall formula", func() error { return c.Uninstall(ctx, "htop", Formula) },
			[]string{"brew", "uninstall", "htop"}, true},
		{"uninstall cask", func() error { return c.Uninstall(ctx, "firefox", Cask) },
			[]string{"brew", "uninstall", "--cask", "firefox"}, true},
		{"uninstall tap", func() error { return c.Uninstall(ctx, "user/tap", Tap) },
			[]string{"brew", "untap", "user/tap"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			assert.Equal(t, tt.want, rec.last())
			assert.Equal(t, tt.stream, rec.streamed[len(rec.streamed)-1])
		})
	}
}

func TestClientUninstallStoreApp(t *testing.T) {
	rec := newRecorder()
	c := NewClient("brew").WithRunner(rec.run)

	err := c.Uninstall(context.Background(), "Slack", StoreApp)
	require.Error(t, err)
	assert.Empty(t, rec.commands, "mas apps must never reach brew uninstall")
}

func TestClientListPackages(t *testing.T) {
	rec := newRecorder()
	rec.output["bundle list --formula --file /tmp/B"] = "git\n  htop  \n\nwget\n"
	c := NewClient("/opt/homebrew/bin/brew").WithRunner(rec.run)

	names, err := c.ListPackages(context.Background(), "/tmp/B", Formula)
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "htop", "wget"}, names)
	assert.Equal(t, "/opt/homebrew/bin/brew", rec.last()[0])

	flags := map[PackageType]string{Tap: "--tap", Formula: "--formula", Cask: "--cask", StoreApp: "--mas"}
	for typ, flag := range flags {
		_, err := c.ListPackages(context.Background(), "/tmp/B", typ)
		require.NoError(t, err)
		assert.Equal(t, flag, rec.last()[3])
	}
}

func TestClientListPackages_Failure(t *testing.T) {
	rec := newRecorder()
	rec.fail["bundle list --cask --file /tmp/B"] = true
	c := NewClient("").WithRunner(rec.run)

	names, err := c.ListPackages(context.Background(), "/tmp/B", Cask)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendCall))
	assert.Nil(t, names)
}

func TestParseLines(t *testing.T) {
	assert.Nil(t, parseLines(""))
	assert.Nil(t, parseLines("\n \n"))
	assert.Equal(t, []string{"homebrew/core", "user/custom-tap"}, parseLines("homebrew/core\nuser/custom-tap\n"))
}
