package domain

import (
	"path/filepath"
	"time"
)

// DateLayout is the date format embedded in versioned raw file names.
const DateLayout = "2006-01-02"

// DatasetNaming describes where raw dataset files live and how they are named.
// Versioned files follow "<Base>-<YYYY-MM-DD>.<Ext>"; the legacy file is "<Base>.<Ext>".
type DatasetNaming struct {
	// Dir is the local directory holding raw files.
	Dir string

	// Base is the file name stem shared by all snapshots.
	Base string

	// Ext is the file extension without the leading dot.
	Ext string
}

// LegacyPath returns the path of the undated legacy file.
func (n DatasetNaming) LegacyPath() string {
	return filepath.Join(n.Dir, n.Base+"."+n.Ext)
}

// VersionedName returns the file name for a snapshot acquired on date.
func (n DatasetNaming) VersionedName(date time.Time) string {
	return n.Base + "-" + date.UTC().Format(DateLayout) + "." + n.Ext
}

// VersionedPath returns the full path for a snapshot acquired on date.
func (n DatasetNaming) VersionedPath(date time.Time) string {
	return filepath.Join(n.Dir, n.VersionedName(date))
}

// Snapshot is one raw dataset file on local disk.
// Snapshots are never mutated in place; a newer snapshot supersedes an older one.
type Snapshot struct {
	// Path is the location of the file.
	Path string

	// Date is the acquisition date parsed from the file name.
	// Zero for the legacy file.
	Date time.Time

	// Legacy is true for the undated file, which always takes precedence.
	Legacy bool
}

// SyncDecision is the outcome of version resolution plus remote sync.
type SyncDecision struct {
	// Snapshot is the authoritative file for this run, or nil if none exists.
	Snapshot *Snapshot

	// NeedsUpdate is true when the raw table must be rebuilt from Snapshot.
	NeedsUpdate bool

	// RemoteChecked is true when the remote repository answered the freshness query.
	RemoteChecked bool

	// Downloaded is true when Snapshot was fetched during this run.
	Downloaded bool

	// Superseded is the path of the local file replaced by a download, if any.
	Superseded string
}

// NewerDay reports whether a is strictly after b at day granularity (UTC).
func NewerDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
