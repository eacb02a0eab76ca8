package scanner

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/brew/brewtest"
)

func newTestScanner(t *testing.T, installed map[brew.PackageType][]string) (*Scanner, *brewtest.Backend) {
	t.Helper()
	b := brewtest.New(installed)
	return New(b).WithTempDir(t.TempDir()), b
}

func names(packages []brew.PackageInfo) []string {
	out := make([]string, len(packages))
	for i, p := range packages {
		out[i] = p.Type.String() + ":" + p.Name
	}
	return out
}

func TestRefresh_BuildsInstalledSnapshot(t *testing.T) {
	s, b := newTestScanner(t, map[brew.PackageType][]string{
		brew.Tap:      {"homebrew/bundle"},
		brew.Formula:  {"git", "htop"},
		brew.Cask:     {"firefox"},
		brew.StoreApp: {"Slack"},
	})

	packages, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"tap:homebrew/bundle", "brew:git", "brew:htop", "cask:firefox", "mas:Slack"},
		names(packages))
	for _, p := range packages {
		assert.Equal(t, brew.StatusInstalled, p.Status, p.Name)
		assert.Empty(t, p.Group, "system packages have no group")
	}

	assert.Len(t, b.CallsTo("autoremove"), 1)
	assert.Len(t, b.CallsTo("dump"), 1)
	assert.Len(t, b.CallsTo("list"), len(brew.AllTypes), "one listing per type")
}

func TestRefresh_RemovesTempManifest(t *testing.T) {
	dir := t.TempDir()
	b := brewtest.New(map[brew.PackageType][]string{brew.Formula: {"git"}})
	s := New(b).WithTempDir(dir)

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	b.ListErr[brew.Cask] = errors.New("boom")
	_, err = s.Refresh(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Refresh(ctx)
	assert.Error(t, err, "a cancelled context should fail the refresh")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary Brewfile left behind")
}

func TestRefresh_BestEffortFailures(t *testing.T) {
	s, b := newTestScanner(t, map[brew.PackageType][]string{
		brew.Formula: {"git"},
		brew.Cask:    {"firefox"},
	})
	b.AutoremoveErr = errors.New("autoremove exploded")
	b.ListErr[brew.Formula] = errors.New("list exploded")

	packages, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cask:firefox"}, names(packages))
}

func TestRefresh_DumpFailureIsTolerated(t *testing.T) {
	s, b := newTestScanner(t, map[brew.PackageType][]string{brew.Formula: {"git"}})
	b.DumpErr = errors.New("dump exploded")

	_, err := s.Refresh(context.Background())
	assert.NoError(t, err)
}

func TestInstalledPackages_IsLazy(t *testing.T) {
	s, b := newTestScanner(t, map[brew.PackageType][]string{brew.Formula: {"git"}})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.InstalledPackages(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, b.CallsTo("dump"), 1, "snapshot should be cached")

	b.Installed[brew.Formula] = []string{"git", "htop"}
	pkgs, _ := s.InstalledPackages(ctx)
	assert.Len(t, pkgs, 1, "cached snapshot changed without refresh")

	s.Invalidate()
	pkgs, _ = s.InstalledPackages(ctx)
	assert.Len(t, pkgs, 2, "Invalidate should force a fresh scan")
}

func TestInstalledPackages_ReturnsCopy(t *testing.T) {
	s, _ := newTestScanner(t, map[brew.PackageType][]string{brew.Formula: {"git"}})
	ctx := context.Background()

	pkgs, _ := s.InstalledPackages(ctx)
	pkgs[0].Name = "mutated"

	again, _ := s.InstalledPackages(ctx)
	assert.Equal(t, "git", again[0].Name)
}

func TestUpdateStatus(t *testing.T) {
	s, _ := newTestScanner(t, map[brew.PackageType][]string{
		brew.Formula:  {"git"},
		brew.StoreApp: {"Slack"},
	})

	configured := []brew.PackageInfo{
		{Name: "git", Type: brew.Formula, Group: "core"},
		{Name: "git", Type: brew.Cask, Group: "core"},
		{Name: "wget", Type: brew.Formula, Group: "core"},
		{Name: "Slack::803453959", Type: brew.StoreApp, Group: "core"},
		{Name: "Xcode::497799835", Type: brew.StoreApp, Group: "core"},
	}
	require.NoError(t, s.UpdateStatus(context.Background(), configured))

	want := []brew.InstallationStatus{
		brew.StatusInstalled,
		brew.StatusNotInstalled,
		brew.StatusNotInstalled,
		brew.StatusInstalled,
		brew.StatusNotInstalled,
	}
	for i, p := range configured {
		assert.Equal(t, want[i], p.Status, "%s/%s", p.Type, p.Name)
	}
}

func TestConcurrentReaders(t *testing.T) {
	s, _ := newTestScanner(t, map[brew.PackageType][]string{brew.Formula: {"git", "htop"}})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(refresh bool) {
			defer wg.Done()
			var pkgs []brew.PackageInfo
			var err error
			if refresh {
				pkgs, err = s.Refresh(ctx)
			} else {
				pkgs, err = s.InstalledPackages(ctx)
			}
			if assert.NoError(t, err) {
				assert.Len(t, pkgs, 2, "observed partial snapshot: %v", names(pkgs))
			}
		}(i%2 == 0)
	}
	wg.Wait()
}
