package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Operation journal

// StartOperation records a running operation and returns its ID.
func (s *Store) StartOperation(kind, hostname string) (int64, error) {
	query := `
		INSERT INTO operations (kind, hostname, started_at, outcome)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		kind,
		hostname,
		time.Now().UTC().Format(time.RFC3339),
		OutcomeRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert operation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get operation ID: %w", err)
	}
	return id, nil
}

// FinishOperation stamps the outcome and counters of an operation.
func (s *Store) FinishOperation(op *Operation) error {
	query := `
		UPDATE operations
		SET finished_at = ?, outcome = ?, installed = ?, adopted = ?, removed = ?, detail = ?
		WHERE id = ?
	`

	result, err := s.db.Exec(query,
		time.Now().UTC().Format(time.RFC3339),
		op.Outcome,
		op.Installed,
		op.Adopted,
		op.Removed,
		op.Detail,
		op.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish operation %d: %w", op.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("operation %d not found", op.ID)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first. A
// limit of zero or less returns every row.
func (s *Store) ListOperations(limit int) ([]*Operation, error) {
	query := `
		SELECT id, kind, hostname, started_at, finished_at, outcome, installed, adopted, removed, detail
		FROM operations
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	operations := []*Operation{}
	for rows.Next() {
		var op Operation
		var startedAt string
		var finishedAt, detail sql.NullString

		if err := rows.Scan(
			&op.ID,
			&op.Kind,
			&op.Hostname,
			&startedAt,
			&finishedAt,
			&op.Outcome,
			&op.Installed,
			&op.Adopted,
			&op.Removed,
			&detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}

		op.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at for operation %d: %w", op.ID, err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finished_at for operation %d: %w", op.ID, err)
			}
			op.FinishedAt = &t
		}
		op.Detail = detail.String

		operations = append(operations, &op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}
	return operations, nil
}

// Snapshot operations

// InsertSnapshot creates a new snapshot record and returns its ID.
func (s *Store) InsertSnapshot(reason, hostname string, pkgCount int, path string) (int64, error) {
	query := `
		INSERT INTO snapshots (created_at, reason, hostname, package_count, snapshot_path)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		time.Now().UTC().Format(time.RFC3339),
		reason,
		hostname,
		pkgCount,
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot ID: %w", err)
	}
	return id, nil
}

// GetSnapshot retrieves a snapshot by ID.
func (s *Store) GetSnapshot(id int64) (*Snapshot, error) {
	query := `
		SELECT id, created_at, reason, hostname, package_count, snapshot_path
		FROM snapshots
		WHERE id = ?
	`

	snapshot, err := scanSnapshot(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %d: %w", id, err)
	}
	return snapshot, nil
}

// LatestSnapshot returns the most recently created snapshot.
func (s *Store) LatestSnapshot() (*Snapshot, error) {
	query := `
		SELECT id, created_at, reason, hostname, package_count, snapshot_path
		FROM snapshots
		ORDER BY id DESC
		LIMIT 1
	`

	snapshot, err := scanSnapshot(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshots found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots returns all snapshots, newest first.
func (s *Store) ListSnapshots() ([]*Snapshot, error) {
	query := `
		SELECT id, created_at, reason, hostname, package_count, snapshot_path
		FROM snapshots
		ORDER BY id DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*Snapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snapshot Snapshot
	var createdAt string
	var reason, hostname sql.NullString

	if err := row.Scan(
		&snapshot.ID,
		&createdAt,
		&reason,
		&hostname,
		&snapshot.PackageCount,
		&snapshot.SnapshotPath,
	); err != nil {
		return nil, err
	}

	var err error
	snapshot.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for snapshot %d: %w", snapshot.ID, err)
	}
	snapshot.Reason = reason.String
	snapshot.Hostname = hostname.String
	return &snapshot, nil
}

// InsertSnapshotPackage adds a package to a snapshot.
func (s *Store) InsertSnapshotPackage(snapshotID int64, pkg *SnapshotPackage) error {
	query := `
		INSERT INTO snapshot_packages (snapshot_id, package_name, package_type)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.Exec(query, snapshotID, pkg.PackageName, pkg.PackageType); err != nil {
		return fmt.Errorf("failed to insert snapshot package %s: %w", pkg.PackageName, err)
	}
	return nil
}

// GetSnapshotPackages returns all packages in a snapshot in insertion order.
func (s *Store) GetSnapshotPackages(snapshotID int64) ([]*SnapshotPackage, error) {
	query := `
		SELECT snapshot_id, package_name, package_type
		FROM snapshot_packages
		WHERE snapshot_id = ?
		ORDER BY rowid
	`

	rows, err := s.db.Query(query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot packages: %w", err)
	}
	defer rows.Close()

	packages := []*SnapshotPackage{}
	for rows.Next() {
		var pkg SnapshotPackage
		if err := rows.Scan(&pkg.SnapshotID, &pkg.PackageName, &pkg.PackageType); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot package: %w", err)
		}
		packages = append(packages, &pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot packages: %w", err)
	}
	return packages, nil
}
