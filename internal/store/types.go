package store

import "time"

// Operation kinds recorded in the journal.
const (
	KindSyncAdopt   = "sync-adopt"
	KindSyncCleanup = "sync-cleanup"
	KindAdd         = "add"
	KindRemove      = "remove"
	KindUndo        = "undo"
)

// Operation outcomes.
const (
	OutcomeRunning   = "running"
	OutcomeDone      = "done"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Operation is one journal row describing a mutating command.
type Operation struct {
	ID         int64
	Kind       string
	Hostname   string
	StartedAt  time.Time
	FinishedAt *time.Time
	Outcome    string
	Installed  int
	Adopted    int
	Removed    int
	Detail     string
}

// Snapshot represents a point-in-time record of installed packages.
type Snapshot struct {
	ID           int64
	CreatedAt    time.Time
	Reason       string
	Hostname     string
	PackageCount int
	SnapshotPath string
}

// SnapshotPackage represents a package in a snapshot.
type SnapshotPackage struct {
	SnapshotID  int64
	PackageName string
	PackageType string // plural form: taps, brews, casks, mas
}
