package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/brewfile/internal/analyzer"
	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/store"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrinter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	p := NewPrinter(out, errOut)

	p.Say("Adding %s: %s", "brew", "git")
	p.Warn("careful")
	p.Success("done")
	p.Error("broken %d", 1)

	assert.Equal(t, "===> Adding brew: git\n[warn] careful\n[success] done\n", out.String())
	assert.Equal(t, "[error] broken 1\n", errOut.String())
	assert.False(t, IsColorEnabled())
}

func TestRenderStatus(t *testing.T) {
	configured := []brew.PackageInfo{
		{Name: "wget", Type: brew.Formula, Group: "core", Status: brew.StatusNotInstalled},
		{Name: "git", Type: brew.Formula, Group: "core", Status: brew.StatusInstalled},
	}
	diff := analyzer.Result{
		Missing: configured[:1],
		Extra:   []brew.PackageInfo{{Name: "zoom", Type: brew.Cask}, {Name: "htop", Type: brew.Formula}},
	}

	got := RenderStatus("host1", []string{"core", "work"}, configured, diff)

	want := `
Package Status for host1:
Groups: core, work

Brews:
  ✓ git (core)
  ✗ wget (core) - missing

Brews (extra):
  + htop - not in config

Casks:
  + zoom - not in config

Summary:
  ✗ 1 package(s) need installation
  + 2 extra package(s) not in current config
`
	assert.Equal(t, want, got)
}

func TestRenderStatus_InSync(t *testing.T) {
	got := RenderStatus("host1", []string{"core"}, nil, analyzer.Result{})
	assert.Contains(t, got, "All packages synchronized!")
	assert.NotContains(t, got, "need installation")
}

func TestRenderPlan(t *testing.T) {
	diff := analyzer.Result{
		Missing: []brew.PackageInfo{{Name: "git", Type: brew.Formula}, {Name: "jq", Type: brew.Formula}},
		Extra:   []brew.PackageInfo{{Name: "zoom", Type: brew.Cask}},
	}

	adopt := RenderPlan("Sync + Adopt", diff, "ADOPT")
	assert.Contains(t, adopt, "Sync + Adopt Summary:")
	assert.Contains(t, adopt, "INSTALL (2):\n  Brews: git, jq\n")
	assert.Contains(t, adopt, "ADOPT (1):\n  Casks: zoom\n")

	cleanup := RenderPlan("Sync + Cleanup", diff, "REMOVE")
	assert.Contains(t, cleanup, "⚠ REMOVE (1):")

	onlyMissing := RenderPlan("Sync + Adopt", analyzer.Result{Missing: diff.Missing}, "ADOPT")
	assert.NotContains(t, onlyMissing, "ADOPT (")
}

func TestRenderSnapshotTable(t *testing.T) {
	assert.Equal(t, "No snapshots found.\n", RenderSnapshotTable(nil))

	snaps := []*store.Snapshot{
		{ID: 1, CreatedAt: time.Now().Add(-48 * time.Hour), Reason: "pre-cleanup", Hostname: "host1", PackageCount: 12},
		{ID: 2, CreatedAt: time.Now(), Reason: "pre-cleanup", Hostname: "host1", PackageCount: 3},
	}
	got := RenderSnapshotTable(snaps)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if assert.Len(t, lines, 4) {
		assert.True(t, strings.HasPrefix(lines[2], "2 "), "newest first: %q", lines[2])
		assert.Contains(t, lines[3], "2 days ago")
	}
}

func TestRenderHistoryTable(t *testing.T) {
	assert.Equal(t, "No operations recorded.\n", RenderHistoryTable(nil))

	ops := []*store.Operation{
		{ID: 7, Kind: store.KindSyncAdopt, StartedAt: time.Now(), Outcome: store.OutcomeDone, Installed: 1, Adopted: 2},
	}
	got := RenderHistoryTable(ops)
	assert.Contains(t, got, "sync-adopt")
	assert.Contains(t, got, "just now")
	assert.Contains(t, got, "done")
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		time time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"one minute ago", now.Add(-1 * time.Minute), "1 minute ago"},
		{"minutes ago", now.Add(-45 * time.Minute), "45 minutes ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3 hours ago"},
		{"one day ago", now.Add(-24 * time.Hour), "1 day ago"},
		{"weeks ago", now.Add(-14 * 24 * time.Hour), "2 weeks ago"},
		{"months ago", now.Add(-90 * 24 * time.Hour), "3 months ago"},
		{"years ago", now.Add(-730 * 24 * time.Hour), "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.time); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "longer...", truncate("longer-than-ten", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
