package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// CreateSnapshot writes packages to a timestamped JSON file, indexes it in
// the store and returns the snapshot ID.
func (m *Manager) CreateSnapshot(packages []brew.PackageInfo, reason, hostname string) (int64, error) {
	if err := os.MkdirAll(m.snapshotDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	snapshotData := &SnapshotData{
		CreatedAt: m.now(),
		Reason:    reason,
		Hostname:  hostname,
		Packages:  make([]*PackageSnapshot, 0, len(packages)),
	}
	for _, p := range packages {
		snapshotData.Packages = append(snapshotData.Packages, &PackageSnapshot{
			Name: p.Name,
			Type: p.Type.Plural(),
		})
	}

	jsonData, err := json.MarshalIndent(snapshotData, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	snapshotPath, err := m.writeSnapshotFile(jsonData)
	if err != nil {
		return 0, err
	}

	snapshotID, err := m.store.InsertSnapshot(reason, hostname, len(packages), snapshotPath)
	if err != nil {
		os.Remove(snapshotPath)
		return 0, fmt.Errorf("failed to insert snapshot into database: %w", err)
	}

	for _, pkg := range snapshotData.Packages {
		snapshotPkg := &store.SnapshotPackage{
			SnapshotID:  snapshotID,
			PackageName: pkg.Name,
			PackageType: pkg.Type,
		}
		if err := m.store.InsertSnapshotPackage(snapshotID, snapshotPkg); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot package %s: %w", pkg.Name, err)
		}
	}

	logging.GetLogger("snapshots").Info().
		Int64("id", snapshotID).
		Int("packages", len(packages)).
		Str("path", snapshotPath).
		Msg("Snapshot created")

	return snapshotID, nil
}

// writeSnapshotFile stores data as <snapshotDir>/YYYY-MM-DD-HHMMSS.json,
// adding a numeric suffix when a snapshot already exists for that second.
func (m *Manager) writeSnapshotFile(data []byte) (string, error) {
	timestamp := m.now().Format("2006-01-02-150405")
	for i := 0; ; i++ {
		name := timestamp + ".json"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.json", timestamp, i)
		}
		path := filepath.Join(m.snapshotDir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create snapshot file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write snapshot file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to write snapshot file: %w", err)
		}
		return path, nil
	}
}

// ListSnapshots returns all snapshots from the database.
func (m *Manager) ListSnapshots() ([]*store.Snapshot, error) {
	snapshots, err := m.store.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

// CleanupOldSnapshots removes snapshot files older than RetentionDays and
// returns how many were deleted. Database rows are kept as an audit log.
func (m *Manager) CleanupOldSnapshots() (int, error) {
	snapshots, err := m.store.ListSnapshots()
	if err != nil {
		return 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	cutoffDate := m.now().AddDate(0, 0, -RetentionDays)
	deletedCount := 0

	for _, snapshot := range snapshots {
		if !snapshot.CreatedAt.Before(cutoffDate) {
			continue
		}
		err := os.Remove(snapshot.SnapshotPath)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return deletedCount, fmt.Errorf("failed to delete snapshot file %s: %w", snapshot.SnapshotPath, err)
		}
		deletedCount++
	}

	return deletedCount, nil
}
