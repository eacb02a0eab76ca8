package manager

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// Add puts name into the host's first group and installs it. When typ is
// nil the type is detected with brew search. The configuration is saved
// before installing and is kept when the install fails, so the command can
// simply be retried.
func (m *Manager) Add(ctx context.Context, name string, typ *brew.PackageType) error {
	cfg, err := m.loadConfig()
	if err != nil {
		return err
	}
	groups, err := cfg.MachineGroups(m.hostname)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("%w: %s", ErrNoGroupsConfigured, m.hostname)
	}

	var t brew.PackageType
	if typ != nil {
		t = *typ
	} else {
		t = brew.DetectType(ctx, m.backend, name)
	}

	m.out.Say("Adding %s: %s", t, name)

	added, err := cfg.AddPackage(groups[0], t, name)
	if err != nil {
		return err
	}
	if !added {
		m.out.Say("%s is already in group %s", name, groups[0])
	}
	if err := cfg.Save(m.configPath); err != nil {
		return err
	}

	e := m.begin(store.KindAdd)
	e.detail("%s %s", t, name)

	if err := m.writeManifest(cfg); err != nil {
		e.finish(store.OutcomeFailed, err)
		return err
	}
	err = m.backend.Install(ctx, m.brewfilePath)
	m.scanner.Invalidate()
	if err != nil {
		e.finish(store.OutcomeFailed, err)
		return fmt.Errorf("%w: %s: %w", ErrInstallFailed, name, err)
	}

	e.op.Installed = 1
	e.finish(store.OutcomeDone, nil)
	m.out.Success("Added and installed %s: %s", t, name)
	return nil
}

// Remove uninstalls a configured package and then drops it from the
// configuration. A package that is not configured, a mas app, or a failed
// uninstall only produce warnings; the configuration is left untouched in
// those cases.
func (m *Manager) Remove(ctx context.Context, name string) error {
	cfg, err := m.loadConfig()
	if err != nil {
		return err
	}
	if _, err := cfg.MachineGroups(m.hostname); err != nil {
		return err
	}

	info, ok := cfg.FindPackage(name)
	if !ok {
		m.out.Warn("Package '%s' not found in configuration.", name)
		return nil
	}

	m.out.Say("Removing %s: %s", info.Type, name)

	if info.Type == brew.StoreApp {
		m.out.Warn("mas packages cannot be uninstalled automatically. Please remove manually from Applications.")
		return nil
	}

	e := m.begin(store.KindRemove)
	e.detail("%s %s", info.Type, name)

	err = m.backend.Uninstall(ctx, name, info.Type)
	m.scanner.Invalidate()
	if err != nil {
		logging.GetLogger("manager").Warn().Err(err).Str("package", name).Msg("Uninstall failed, keeping configuration")
		m.out.Warn("Failed to remove %s from system. Keeping in configuration.", name)
		e.finish(store.OutcomeFailed, err)
		return nil
	}

	removedType, removed := cfg.RemovePackage(name)
	if !removed {
		m.out.Warn("Package was removed from system but not found in config: %s", name)
		e.finish(store.OutcomeDone, nil)
		return nil
	}
	if err := cfg.Save(m.configPath); err != nil {
		e.finish(store.OutcomeFailed, err)
		return err
	}
	m.refreshManifest(cfg)

	e.op.Removed = 1
	e.finish(store.OutcomeDone, nil)
	m.out.Success("Removed %s: %s", removedType, name)
	return nil
}
