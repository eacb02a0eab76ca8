// Package manager drives convergence between the configuration and the
// host: it computes the difference, asks for confirmation and applies the
// result through the brew backend.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/brewfile/internal/analyzer"
	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/config"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/manifest"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/scanner"
	"github.com/blackwell-systems/brewfile/internal/shell"
	"github.com/blackwell-systems/brewfile/internal/snapshots"
	"github.com/blackwell-systems/brewfile/internal/store"
)

var (
	// ErrNoGroupsConfigured is returned by Add when the host has an empty group list.
	ErrNoGroupsConfigured = errors.New("no package groups configured for this machine")

	// ErrInstallFailed wraps a failed brew bundle install. Nothing is adopted after it.
	ErrInstallFailed = errors.New("failed to install packages")

	// ErrCancelled is returned when the operator declines a confirmation.
	ErrCancelled = errors.New("cancelled")
)

const (
	// DefaultGroup is created by init on a fresh configuration.
	DefaultGroup = "core"

	// FallbackGroup receives adopted packages when the host has no groups.
	FallbackGroup = "adopted"
)

// EditorFunc opens path in the editor command.
type EditorFunc func(ctx context.Context, command, path string) error

// Options configures a Manager. Backend, Hostname, ConfigPath and
// BrewfilePath are required; the rest have usable defaults.
type Options struct {
	Backend      brew.Backend
	Hostname     string
	ConfigPath   string
	BrewfilePath string

	Scanner    *scanner.Scanner
	Printer    *output.Printer
	Prompter   Prompter
	Journal    *store.Store
	Snapshots  *snapshots.Manager
	Editor     string
	OpenEditor EditorFunc
}

// Manager orchestrates every user-facing operation. The configuration is
// reloaded from disk at the start of each operation.
type Manager struct {
	backend      brew.Backend
	scanner      *scanner.Scanner
	hostname     string
	configPath   string
	brewfilePath string

	out        *output.Printer
	prompt     Prompter
	journal    *store.Store
	snapshots  *snapshots.Manager
	editor     string
	openEditor EditorFunc
}

// New creates a Manager from opts.
func New(opts Options) (*Manager, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if opts.Hostname == "" {
		return nil, fmt.Errorf("hostname cannot be empty")
	}
	if opts.ConfigPath == "" || opts.BrewfilePath == "" {
		return nil, fmt.Errorf("configuration and Brewfile paths are required")
	}

	m := &Manager{
		backend:      opts.Backend,
		scanner:      opts.Scanner,
		hostname:     opts.Hostname,
		configPath:   opts.ConfigPath,
		brewfilePath: opts.BrewfilePath,
		out:          opts.Printer,
		prompt:       opts.Prompter,
		journal:      opts.Journal,
		snapshots:    opts.Snapshots,
		editor:       opts.Editor,
		openEditor:   opts.OpenEditor,
	}
	if m.scanner == nil {
		m.scanner = scanner.New(opts.Backend)
	}
	if m.out == nil {
		m.out = output.NewPrinter(nil, nil)
	}
	if m.prompt == nil {
		m.prompt = NewLinePrompter(os.Stdin, m.out.Out())
	}
	if m.openEditor == nil {
		m.openEditor = func(ctx context.Context, command, path string) error {
			return shell.NewEditor(command).Open(ctx, path)
		}
	}
	return m, nil
}

// Hostname returns the machine name used for lookups.
func (m *Manager) Hostname() string {
	return m.hostname
}

// ConfigPath returns the configuration file location.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

func (m *Manager) loadConfig() (*config.Configuration, error) {
	return config.Load(m.configPath)
}

// plan is the Computed state of a sync: the configuration it was computed
// from, the configured packages with status, the installed snapshot and the
// difference.
type plan struct {
	cfg        *config.Configuration
	groups     []string
	configured []brew.PackageInfo
	installed  []brew.PackageInfo
	diff       analyzer.Result
}

func (m *Manager) compute(ctx context.Context) (*plan, error) {
	cfg, err := m.loadConfig()
	if err != nil {
		return nil, err
	}
	groups, err := cfg.MachineGroups(m.hostname)
	if err != nil {
		return nil, err
	}
	configured, err := cfg.MachinePackages(m.hostname)
	if err != nil {
		return nil, err
	}

	var installed []brew.PackageInfo
	err = output.Spin(m.out.Out(), "Checking installed packages", func() error {
		var scanErr error
		installed, scanErr = m.scanner.InstalledPackages(ctx)
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read installed packages: %w", err)
	}
	if err := m.scanner.UpdateStatus(ctx, configured); err != nil {
		return nil, err
	}

	return &plan{
		cfg:        cfg,
		groups:     groups,
		configured: configured,
		installed:  installed,
		diff:       analyzer.Compare(configured, installed),
	}, nil
}

// WriteManifest regenerates the Brewfile from the configuration.
func (m *Manager) WriteManifest() error {
	cfg, err := m.loadConfig()
	if err != nil {
		return err
	}
	return m.writeManifest(cfg)
}

func (m *Manager) writeManifest(cfg *config.Configuration) error {
	packages, err := cfg.MachinePackages(m.hostname)
	if err != nil {
		return err
	}
	if err := manifest.Write(m.brewfilePath, packages); err != nil {
		return err
	}
	if missing := manifest.MissingIDs(packages); len(missing) > 0 {
		logging.GetLogger("manager").Warn().
			Strs("apps", missing).
			Msg("mas apps without a store ID are commented out of the Brewfile")
	}
	return nil
}

// refreshManifest is writeManifest for steps where the Brewfile is a
// convenience copy and a failure must not change the outcome.
func (m *Manager) refreshManifest(cfg *config.Configuration) {
	if err := m.writeManifest(cfg); err != nil {
		logging.GetLogger("manager").Warn().Err(err).Msg("Could not regenerate Brewfile")
		m.out.Warn("Could not regenerate %s: %v", m.brewfilePath, err)
	}
}

// ManifestDiff returns a unified diff between the Brewfile on disk and the
// one the configuration would produce.
func (m *Manager) ManifestDiff() (string, error) {
	cfg, err := m.loadConfig()
	if err != nil {
		return "", err
	}
	packages, err := cfg.MachinePackages(m.hostname)
	if err != nil {
		return "", err
	}
	return manifest.Diff(m.brewfilePath, packages)
}
