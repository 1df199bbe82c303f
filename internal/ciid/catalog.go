package ciid

import (
	"context"
	"time"
)

// Run is one recorded invocation of a catalog-mutating command.
type Run struct {
	ID         string
	Command    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
}

// Run statuses.
const (
	RunRunning = "running"
	RunSuccess = "success"
	RunError   = "error"
)

// CatalogEntry is the stored identity of one file.
type CatalogEntry struct {
	Path             string
	Identifier       string
	CapturedAtMillis int64
	UTCOffset        string // ±HH:MM
	Fingerprint      string // lowercase hex, "" when indexed without hashing
	RunID            string
	IndexedAt        time.Time
}

// DuplicateGroup is a fingerprint shared by more than one path.
type DuplicateGroup struct {
	Fingerprint string
	Paths       []string
}

// Catalog persists derived identities so that collections can be queried
// without re-decoding every file.
type Catalog interface {
	// BeginRun records the start of a command and returns the new run.
	BeginRun(ctx context.Context, command string) (*Run, error)

	// FinishRun marks a run as finished with the given status.
	FinishRun(ctx context.Context, runID, status string) error

	// PutIdentity inserts or replaces the entry for id.Path.
	PutIdentity(ctx context.Context, runID string, id *Identity) error

	// FindByPath returns the entry for path, or nil if there is none.
	FindByPath(ctx context.Context, path string) (*CatalogEntry, error)

	// FindByFingerprint returns every entry with the given hex fingerprint, ordered by path.
	FindByFingerprint(ctx context.Context, fingerprint string) ([]*CatalogEntry, error)

	// Duplicates returns the fingerprints shared by more than one path,
	// ordered by fingerprint, each with its paths in order.
	Duplicates(ctx context.Context) ([]DuplicateGroup, error)

	// Close closes the catalog.
	Close() error
}

// EntryFromIdentity builds the catalog row for a derived identity.
func EntryFromIdentity(runID string, id *Identity, indexedAt time.Time) *CatalogEntry {
	_, offset := id.CapturedAt.Zone()
	return &CatalogEntry{
		Path:             id.Path,
		Identifier:       id.Identifier,
		CapturedAtMillis: id.CapturedAt.UnixMilli(),
		UTCOffset:        FormatOffset(offset),
		Fingerprint:      id.FingerprintHex(),
		RunID:            runID,
		IndexedAt:        indexedAt,
	}
}

// CapturedAt reconstructs the capture time with its original offset.
func (e *CatalogEntry) CapturedAt() (time.Time, error) {
	loc, err := ParseOffset(e.UTCOffset)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(e.CapturedAtMillis).In(loc), nil
}
