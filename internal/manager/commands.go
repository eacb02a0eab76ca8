package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/brewfile/internal/analyzer"
	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/config"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/shell"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// Init makes sure a configuration exists and assigns groups to this host.
// A configuration without groups gets an empty core group assigned to the
// host; otherwise the operator picks groups by number or "all".
func (m *Manager) Init(ctx context.Context) error {
	m.out.Say("Configuring machine: %s", m.hostname)

	var cfg *config.Configuration
	if _, err := os.Stat(m.configPath); errors.Is(err, os.ErrNotExist) {
		m.out.Say("Creating new brewfile configuration...")
		cfg = config.New()
		if err := cfg.Save(m.configPath); err != nil {
			return err
		}
		m.out.Success("Created configuration at %s", m.configPath)
	} else {
		loaded, err := m.loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if len(cfg.Packages) == 0 {
		m.out.Say("No package groups found. Creating empty '%s' group...", DefaultGroup)
		cfg.EnsureGroup(DefaultGroup)
		cfg.AssignGroups(m.hostname, []string{DefaultGroup})
		if err := cfg.Save(m.configPath); err != nil {
			return err
		}
		m.out.Success("Created empty '%s' group for %s", DefaultGroup, m.hostname)
		m.out.Println()
		m.out.Say("Next steps:")
		m.out.Println("  • Add packages: brewfile add <package_name>")
		m.out.Println("  • Adopt current system: brewfile sync-adopt")
		m.out.Println("  • Check status: brewfile status")
		return nil
	}

	names := cfg.GroupNames()
	m.out.Println("\nAvailable package groups:")
	for i, name := range names {
		m.out.Printf("  %d. %s (%d packages)\n", i+1, name, cfg.Packages[name].Len())
	}

	answer, err := m.prompt.Ask(fmt.Sprintf("\nSelect groups for machine '%s' (comma-separated numbers or 'all'):\n> ", m.hostname))
	if errors.Is(err, io.EOF) {
		return ErrCancelled
	}
	if err != nil {
		return err
	}

	selected := parseSelection(answer, names)
	if len(selected) == 0 {
		return fmt.Errorf("no valid groups selected")
	}

	cfg.AssignGroups(m.hostname, selected)
	if err := cfg.Save(m.configPath); err != nil {
		return err
	}
	m.out.Success("Machine '%s' configured with groups: %s", m.hostname, strings.Join(selected, ", "))
	return nil
}

// parseSelection turns "all" or a list like "1, 3" into group names.
// Out-of-range and non-numeric entries are ignored.
func parseSelection(answer string, names []string) []string {
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, "all") {
		return append([]string(nil), names...)
	}

	var selected []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(answer, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 1 || i > len(names) {
			continue
		}
		if name := names[i-1]; !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}
	return selected
}

// StatusReport is what status computed for the host.
type StatusReport struct {
	Hostname   string
	Groups     []string
	Configured []brew.PackageInfo
	Diff       analyzer.Result
}

// Status compares the configuration with the host and prints the result.
func (m *Manager) Status(ctx context.Context) (*StatusReport, error) {
	p, err := m.compute(ctx)
	if err != nil {
		return nil, err
	}
	report := &StatusReport{
		Hostname:   m.hostname,
		Groups:     p.groups,
		Configured: p.configured,
		Diff:       p.diff,
	}
	m.out.Printf("%s", output.RenderStatus(report.Hostname, report.Groups, report.Configured, report.Diff))
	return report, nil
}

// Interactive shows status and, when out of sync, offers a menu of
// actions.
func (m *Manager) Interactive(ctx context.Context) error {
	report, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if report.Diff.InSync() {
		return nil
	}

	m.out.Println("\nAvailable Actions:")
	m.out.Println("  1. Sync + Adopt (safe: install missing, keep extras)")
	m.out.Println("  2. Sync + Cleanup (destructive: install missing, remove extras)")
	m.out.Println("  3. Edit config file")
	m.out.Println("  4. Exit")

	choice, err := m.prompt.Ask("\nChoose action [1-4]: ")
	if errors.Is(err, io.EOF) {
		m.out.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		_, err = m.SyncAdopt(ctx)
	case "2":
		_, err = m.SyncCleanup(ctx)
	case "3":
		err = m.Edit(ctx)
	case "4":
		m.out.Say("Goodbye!")
	default:
		m.out.Warn("Invalid choice. Exiting.")
	}
	if errors.Is(err, ErrCancelled) {
		m.out.Println("Cancelled.")
		return nil
	}
	return err
}

// Edit opens the configuration in the operator's editor and reloads it
// afterwards so syntax errors are reported immediately.
func (m *Manager) Edit(ctx context.Context) error {
	editor := shell.ResolveEditor(m.editor)
	m.out.Say("Opening %s with %s...", m.configPath, editor)

	if err := m.openEditor(ctx, editor, m.configPath); err != nil {
		m.out.Warn("Failed to open editor.")
		return err
	}

	if _, err := m.loadConfig(); err != nil {
		return err
	}
	m.out.Success("Config reloaded after editing.")
	return nil
}

// Snapshots lists recorded pre-cleanup snapshots.
func (m *Manager) Snapshots() ([]*store.Snapshot, error) {
	if m.snapshots == nil {
		return nil, fmt.Errorf("snapshots are not available")
	}
	return m.snapshots.ListSnapshots()
}

// Undo reinstalls the packages recorded in a snapshot. ref is a snapshot
// ID or "latest". With assumeYes the confirmation is skipped.
func (m *Manager) Undo(ctx context.Context, ref string, assumeYes bool) error {
	if m.snapshots == nil {
		return fmt.Errorf("snapshots are not available")
	}

	snapshot, err := m.snapshots.Resolve(ref)
	if err != nil {
		return err
	}
	data, err := m.snapshots.Load(snapshot)
	if err != nil {
		return err
	}
	packages, err := data.PackageInfos()
	if err != nil {
		return err
	}

	m.out.Printf("Snapshot %d: %s, %d packages, taken on %s\n",
		snapshot.ID, snapshot.Reason, snapshot.PackageCount, snapshot.CreatedAt.Local().Format("2006-01-02 15:04"))
	m.out.Printf("%s", output.RenderPlan("Undo", analyzer.Result{Missing: packages}, ""))

	if !assumeYes {
		if err := m.confirm("\nReinstall these packages?"); err != nil {
			return err
		}
	}

	e := m.begin(store.KindUndo)
	e.detail("snapshot %d", snapshot.ID)

	m.out.Say("Restoring snapshot %d...", snapshot.ID)
	restored, err := m.snapshots.RestoreSnapshot(ctx, snapshot)
	m.scanner.Invalidate()
	if err != nil {
		e.finish(store.OutcomeFailed, err)
		return err
	}

	e.op.Installed = len(restored)
	e.finish(store.OutcomeDone, nil)
	m.out.Success("Restored snapshot %d (%d packages)", snapshot.ID, len(restored))
	return nil
}
