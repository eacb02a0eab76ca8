package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// SyncReport describes what a sync did. A non-nil CleanupErr means the
// install phase succeeded but brew bundle cleanup failed.
type SyncReport struct {
	Missing    []brew.PackageInfo
	Extra      []brew.PackageInfo
	Installed  int
	Adopted    []brew.PackageInfo
	Removed    int
	SnapshotID int64
	CleanupErr error
}

// PartialFailure reports whether the sync finished with a failed cleanup.
func (r *SyncReport) PartialFailure() bool {
	return r.CleanupErr != nil
}

// SyncAdopt installs configured packages that are missing and adds every
// extra package to the host's first group. Nothing is removed.
func (m *Manager) SyncAdopt(ctx context.Context) (*SyncReport, error) {
	p, err := m.compute(ctx)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{Missing: p.diff.Missing, Extra: p.diff.Extra}

	if p.diff.InSync() {
		m.out.Success("All packages are already synchronized!")
		return report, nil
	}

	m.out.Printf("%s", output.RenderPlan("Sync + Adopt", p.diff, "ADOPT"))
	m.out.Printf("\nThis will install missing packages and keep all extras in your %s config.\n", m.hostname)
	m.out.Println("No packages will be removed from your system.")

	if err := m.confirm("\nProceed?"); err != nil {
		return report, err
	}

	e := m.begin(store.KindSyncAdopt)

	if err := m.installMissing(ctx, p); err != nil {
		e.finish(store.OutcomeFailed, err)
		return report, err
	}
	report.Installed = len(p.diff.Missing)
	e.op.Installed = report.Installed

	if len(p.diff.Extra) > 0 {
		m.out.Say("Adopting extra packages to configuration...")
		target := FallbackGroup
		if len(p.groups) > 0 {
			target = p.groups[0]
		}

		for _, pkg := range p.diff.Extra {
			if pkg.Type == brew.StoreApp {
				if _, _, ok := brew.SplitStoreApp(pkg.Name); !ok {
					logging.GetLogger("manager").Warn().
						Str("app", pkg.Name).
						Msg("Adopted mas app has no store ID; add it as \"Name::ID\" to include it in the Brewfile")
					m.out.Warn("%s adopted without a store ID; find it with 'mas list' and edit the config", pkg.Name)
				}
			}
			added, err := p.cfg.AddPackage(target, pkg.Type, pkg.Name)
			if err != nil {
				e.finish(store.OutcomeFailed, err)
				return report, err
			}
			if added {
				report.Adopted = append(report.Adopted, pkg)
			}
		}

		if err := p.cfg.Save(m.configPath); err != nil {
			e.finish(store.OutcomeFailed, err)
			return report, err
		}
		e.op.Adopted = len(report.Adopted)
		e.detail("adopted into %s: %s", target, joinNames(report.Adopted))
		m.refreshManifest(p.cfg)
	}

	e.finish(store.OutcomeDone, nil)
	m.out.Success("Sync + Adopt complete!")
	return report, nil
}

// SyncCleanup installs configured packages that are missing and removes
// every installed package that is not configured, using a Brewfile
// generated from the configuration.
func (m *Manager) SyncCleanup(ctx context.Context) (*SyncReport, error) {
	p, err := m.compute(ctx)
	if err != nil {
		return nil, err
	}
	report := &SyncReport{Missing: p.diff.Missing, Extra: p.diff.Extra}

	if p.diff.InSync() {
		m.out.Success("All packages are already synchronized!")
		return report, nil
	}

	m.out.Printf("%s", output.RenderPlan("Sync + Cleanup", p.diff, "REMOVE"))
	m.out.Println("\nThis will install missing packages and remove extras from your system.")
	if len(p.diff.Extra) > 0 {
		m.out.Warn("This will uninstall packages from your system!")
	}

	if err := m.confirm("\nProceed?"); err != nil {
		return report, err
	}

	e := m.begin(store.KindSyncCleanup)

	if err := m.installMissing(ctx, p); err != nil {
		e.finish(store.OutcomeFailed, err)
		return report, err
	}
	report.Installed = len(p.diff.Missing)
	e.op.Installed = report.Installed

	if len(p.diff.Extra) == 0 {
		e.finish(store.OutcomeDone, nil)
		m.out.Success("Sync + Cleanup complete!")
		return report, nil
	}

	report.SnapshotID = m.snapshotBeforeCleanup(p.installed)

	// The cleanup Brewfile must come from the configuration. A Brewfile
	// dumped from the system would list every extra as wanted.
	if err := m.writeManifest(p.cfg); err != nil {
		e.finish(store.OutcomeFailed, err)
		return report, err
	}

	m.out.Say("Removing extra packages...")
	err = m.backend.Cleanup(ctx, m.brewfilePath)
	m.scanner.Invalidate()
	if err != nil {
		logging.GetLogger("manager").Warn().Err(err).Msg("brew bundle cleanup failed")
		m.out.Warn("Cleanup portion failed, but install may have succeeded.")
		report.CleanupErr = err
		e.finish(store.OutcomePartial, err)
		return report, nil
	}

	report.Removed = len(p.diff.Extra)
	e.op.Removed = report.Removed
	e.detail("removed: %s", joinNames(p.diff.Extra))
	e.finish(store.OutcomeDone, nil)
	m.out.Success("Sync + Cleanup complete!")
	return report, nil
}

// installMissing regenerates the Brewfile from configuration and runs
// brew bundle install when anything is missing.
func (m *Manager) installMissing(ctx context.Context, p *plan) error {
	if len(p.diff.Missing) == 0 {
		return nil
	}
	if err := m.writeManifest(p.cfg); err != nil {
		return err
	}
	m.out.Say("Installing missing packages...")
	err := m.backend.Install(ctx, m.brewfilePath)
	m.scanner.Invalidate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	return nil
}

// snapshotBeforeCleanup records the installed set so undo can reinstall
// it. Failures are warnings; it returns 0 when no snapshot was taken.
func (m *Manager) snapshotBeforeCleanup(installed []brew.PackageInfo) int64 {
	if m.snapshots == nil {
		return 0
	}
	log := logging.GetLogger("manager")

	id, err := m.snapshots.CreateSnapshot(installed, "pre-cleanup", m.hostname)
	if err != nil {
		log.Warn().Err(err).Msg("Could not snapshot installed packages before cleanup")
		m.out.Warn("Could not snapshot installed packages: %v", err)
		return 0
	}
	m.out.Say("Saved snapshot %d (restore with 'brewfile undo %d')", id, id)

	if n, err := m.snapshots.CleanupOldSnapshots(); err != nil {
		log.Warn().Err(err).Msg("Could not prune old snapshots")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("Pruned old snapshots")
	}
	return id
}

func (m *Manager) confirm(question string) error {
	ok, err := m.prompt.Confirm(question)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

func joinNames(packages []brew.PackageInfo) string {
	names := make([]string, len(packages))
	for i, p := range packages {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
