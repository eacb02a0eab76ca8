// Package scanner captures which packages are actually installed on the
// host, as reported by brew bundle, and caches the result.
package scanner

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/logging"
)

// Scanner owns the installed-package snapshot. The snapshot is built on
// first use and kept until Refresh or Invalidate.
type Scanner struct {
	backend brew.Backend
	tempDir string

	refreshMu sync.Mutex // serializes rebuilds

	mu        sync.Mutex // guards installed and loaded
	installed []brew.PackageInfo
	loaded    bool
}

// New creates a Scanner that queries the given backend.
func New(backend brew.Backend) *Scanner {
	return &Scanner{backend: backend}
}

// WithTempDir sets where the temporary system Brewfile is created.
// The default is os.TempDir().
func (s *Scanner) WithTempDir(dir string) *Scanner {
	s.tempDir = dir
	return s
}

// Invalidate drops the cached snapshot.
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installed = nil
	s.loaded = false
}

// InstalledPackages returns the cached snapshot, refreshing only when no
// snapshot exists yet.
func (s *Scanner) InstalledPackages(ctx context.Context) ([]brew.PackageInfo, error) {
	s.mu.Lock()
	if s.loaded {
		out := clone(s.installed)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh rebuilds the snapshot from the system. Orphaned dependencies are
// autoremoved first on a best-effort basis; the current state is dumped to
// a temporary Brewfile that is always deleted, and each package type is
// listed independently so one failing type does not hide the others.
func (s *Scanner) Refresh(ctx context.Context) ([]brew.PackageInfo, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	log := logging.GetLogger("scanner")
	done := logging.LogOperationStart(log, "refresh")
	defer done()

	if err := s.backend.Autoremove(ctx); err != nil {
		log.Warn().Err(err).Msg("brew autoremove failed, continuing")
	}

	packages, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.installed = packages
	s.loaded = true
	s.mu.Unlock()

	return clone(packages), nil
}

func (s *Scanner) scan(ctx context.Context) ([]brew.PackageInfo, error) {
	log := logging.GetLogger("scanner")

	tmp, err := os.CreateTemp(s.tempDir, "system-*.brewfile")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary Brewfile: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := s.backend.DumpSystemState(ctx, tmpPath); err != nil {
		log.Warn().Err(err).Msg("brew bundle dump failed, installed package list may be incomplete")
	}

	packages := []brew.PackageInfo{}
	for _, t := range brew.AllTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		names, err := s.backend.ListPackages(ctx, tmpPath, t)
		if err != nil {
			log.Warn().Err(err).Str("type", t.Plural()).Msg("Listing installed packages failed, treating as none")
			continue
		}
		for _, name := range names {
			packages = append(packages, brew.PackageInfo{
				Name:   name,
				Type:   t,
				Status: brew.StatusInstalled,
			})
		}
	}
	return packages, nil
}

// UpdateStatus marks each package Installed or NotInstalled in place,
// comparing mas entries by display name only.
func (s *Scanner) UpdateStatus(ctx context.Context, packages []brew.PackageInfo) error {
	installed, err := s.InstalledPackages(ctx)
	if err != nil {
		return err
	}

	present := make(map[brew.Identity]struct{}, len(installed))
	for _, p := range installed {
		present[p.MatchIdentity()] = struct{}{}
	}

	for i := range packages {
		if _, ok := present[packages[i].MatchIdentity()]; ok {
			packages[i].Status = brew.StatusInstalled
		} else {
			packages[i].Status = brew.StatusNotInstalled
		}
	}
	return nil
}

func clone(packages []brew.PackageInfo) []brew.PackageInfo {
	if packages == nil {
		return []brew.PackageInfo{}
	}
	return append([]brew.PackageInfo(nil), packages...)
}
