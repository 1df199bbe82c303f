// Package catalog stores derived identities in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ciid-go/internal/catalog/migrations"
	"ciid-go/internal/ciid"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCatalog implements the Catalog interface using SQLite.
type SQLiteCatalog struct {
	db    *sql.DB
	path  string
	clock ciid.Clock
	ids   ciid.IDGenerator
}

// NewSQLiteCatalog opens the catalog at path, which can be a file path or
// ":memory:". A nil clock or ids selects the real clock and random UUIDs.
// The schema is not touched; call MigrateUp or CheckMigrations.
func NewSQLiteCatalog(path string, clock ciid.Clock, ids ciid.IDGenerator) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteCatalogFromDB(db, path, clock, ids), nil
}

// NewSQLiteCatalogFromDB wraps an existing connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteCatalogFromDB(db *sql.DB, path string, clock ciid.Clock, ids ciid.IDGenerator) *SQLiteCatalog {
	if clock == nil {
		clock = ciid.RealClock{}
	}
	if ids == nil {
		ids = ciid.UUIDGenerator{}
	}
	return &SQLiteCatalog{db: db, path: path, clock: clock, ids: ids}
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Run operations

func (s *SQLiteCatalog) BeginRun(ctx context.Context, command string) (*ciid.Run, error) {
	run := &ciid.Run{
		ID:        s.ids.New(),
		Command:   command,
		StartedAt: s.clock.Now().UTC(),
		Status:    ciid.RunRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.Command, run.StartedAt, run.Status)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return run, nil
}

func (s *SQLiteCatalog) FinishRun(ctx context.Context, runID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ? WHERE id = ?`,
		s.clock.Now().UTC(), status, runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run: no run with id %s", runID)
	}
	return nil
}

// FindRun returns the run with the given id, or nil if there is none.
func (s *SQLiteCatalog) FindRun(ctx context.Context, runID string) (*ciid.Run, error) {
	var run ciid.Run
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, command, started_at, finished_at, status FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.Command, &run.StartedAt, &finished, &run.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// Photo operations

func (s *SQLiteCatalog) PutIdentity(ctx context.Context, runID string, id *ciid.Identity) error {
	e := ciid.EntryFromIdentity(runID, id, s.clock.Now().UTC())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (path, identifier, captured_at_ms, utc_offset, fingerprint, run_id, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			identifier     = excluded.identifier,
			captured_at_ms = excluded.captured_at_ms,
			utc_offset     = excluded.utc_offset,
			fingerprint    = excluded.fingerprint,
			run_id         = excluded.run_id,
			indexed_at     = excluded.indexed_at`,
		e.Path, e.Identifier, e.CapturedAtMillis, e.UTCOffset,
		sql.NullString{String: e.Fingerprint, Valid: e.Fingerprint != ""},
		e.RunID, e.IndexedAt)
	if err != nil {
		return fmt.Errorf("storing identity of %s: %w", e.Path, err)
	}
	return nil
}

const selectEntry = `SELECT path, identifier, captured_at_ms, utc_offset, fingerprint, run_id, indexed_at FROM photos`

func scanEntry(row interface{ Scan(...any) error }) (*ciid.CatalogEntry, error) {
	var e ciid.CatalogEntry
	var fp sql.NullString
	if err := row.Scan(&e.Path, &e.Identifier, &e.CapturedAtMillis, &e.UTCOffset, &fp, &e.RunID, &e.IndexedAt); err != nil {
		return nil, err
	}
	e.Fingerprint = fp.String
	return &e, nil
}

func (s *SQLiteCatalog) FindByPath(ctx context.Context, path string) (*ciid.CatalogEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE path = ?`, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding entry by path: %w", err)
	}
	return e, nil
}

func (s *SQLiteCatalog) FindByFingerprint(ctx context.Context, fingerprint string) ([]*ciid.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+` WHERE fingerprint = ? ORDER BY path`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("finding entries by fingerprint: %w", err)
	}
	defer rows.Close()

	var result []*ciid.CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding entries by fingerprint: %w", err)
	}
	return result, nil
}

func (s *SQLiteCatalog) Duplicates(ctx context.Context) ([]ciid.DuplicateGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, path FROM photos
		WHERE fingerprint IN (
			SELECT fingerprint FROM photos
			WHERE fingerprint IS NOT NULL
			GROUP BY fingerprint
			HAVING COUNT(*) > 1
		)
		ORDER BY fingerprint, path`)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var groups []ciid.DuplicateGroup
	for rows.Next() {
		var fp, path string
		if err := rows.Scan(&fp, &path); err != nil {
			return nil, fmt.Errorf("scanning duplicate: %w", err)
		}
		if n := len(groups); n == 0 || groups[n-1].Fingerprint != fp {
			groups = append(groups, ciid.DuplicateGroup{Fingerprint: fp})
		}
		last := &groups[len(groups)-1]
		last.Paths = append(last.Paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	return groups, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteCatalog) Path() string {
	return s.path
}

// MigrateUp brings the schema to the latest version.
func (s *SQLiteCatalog) MigrateUp() error {
	return migrations.Up(s.db)
}

// CheckMigrations verifies the schema is up-to-date.
func (s *SQLiteCatalog) CheckMigrations() error {
	return migrations.Check(s.db)
}

// Close closes the database connection.
func (s *SQLiteCatalog) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteCatalog implements ciid.Catalog interface
var _ ciid.Catalog = (*SQLiteCatalog)(nil)
