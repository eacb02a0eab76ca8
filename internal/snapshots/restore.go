package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/manifest"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// Resolve turns a user reference ("latest" or a numeric ID) into a
// snapshot record.
func (m *Manager) Resolve(ref string) (*store.Snapshot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "latest") {
		return m.store.LatestSnapshot()
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot ID %q: must be a number or 'latest'", ref)
	}
	return m.store.GetSnapshot(id)
}

// Load reads the snapshot file behind a snapshot record.
func (m *Manager) Load(snapshot *store.Snapshot) (*SnapshotData, error) {
	return loadSnapshotFile(snapshot.SnapshotPath)
}

// RestoreSnapshot reinstalls every package recorded in the snapshot by
// rendering it to a temporary Brewfile and running brew bundle install.
// It returns the packages that were requested.
func (m *Manager) RestoreSnapshot(ctx context.Context, snapshot *store.Snapshot) ([]brew.PackageInfo, error) {
	snapshotData, err := m.Load(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot file: %w", err)
	}

	packages, err := snapshotData.PackageInfos()
	if err != nil {
		return nil, fmt.Errorf("snapshot %d is corrupt: %w", snapshot.ID, err)
	}

	if missing := manifest.MissingIDs(packages); len(missing) > 0 {
		logging.GetLogger("snapshots").Warn().
			Strs("apps", missing).
			Msg("mas apps without a store ID cannot be restored")
	}

	tmp, err := os.CreateTemp("", "restore-*.brewfile")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary Brewfile: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := manifest.Write(tmpPath, packages); err != nil {
		return nil, err
	}
	if err := m.backend.Install(ctx, tmpPath); err != nil {
		return packages, fmt.Errorf("failed to restore snapshot %d: %w", snapshot.ID, err)
	}
	return packages, nil
}

// loadSnapshotFile reads and parses a snapshot JSON file.
func loadSnapshotFile(path string) (*SnapshotData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snapshotData SnapshotData
	if err := json.Unmarshal(data, &snapshotData); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return &snapshotData, nil
}
