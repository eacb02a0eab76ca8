// Package snapshots records the installed package set before destructive
// operations so it can be reinstalled later.
package snapshots

import (
	"time"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// RetentionDays is how long snapshot files are kept on disk.
const RetentionDays = 90

// SnapshotData represents the JSON structure stored in snapshot files.
type SnapshotData struct {
	CreatedAt time.Time
	Reason    string
	Hostname  string
	Packages  []*PackageSnapshot
}

// PackageSnapshot represents a package in a snapshot file.
type PackageSnapshot struct {
	Name string
	Type string // plural form, as in the configuration file
}

// PackageInfos converts the snapshot back into package records.
func (d *SnapshotData) PackageInfos() ([]brew.PackageInfo, error) {
	out := make([]brew.PackageInfo, 0, len(d.Packages))
	for _, p := range d.Packages {
		t, err := brew.ParsePlural(p.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, brew.PackageInfo{Name: p.Name, Type: t, Status: brew.StatusInstalled})
	}
	return out, nil
}

// Manager manages snapshot creation, restoration, and cleanup.
type Manager struct {
	store       *store.Store
	backend     brew.Backend
	snapshotDir string
	now         func() time.Time
}

// New creates a new snapshot Manager.
func New(store *store.Store, backend brew.Backend, snapshotDir string) *Manager {
	return &Manager{
		store:       store,
		backend:     backend,
		snapshotDir: snapshotDir,
		now:         time.Now,
	}
}
