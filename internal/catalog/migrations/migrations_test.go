package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	tables := []string{"runs", "photos", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheck_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	err := Check(db)
	if !errors.Is(err, ErrNoVersion) {
		t.Errorf("Check() error = %v, want ErrNoVersion", err)
	}
}

func TestCheck_AfterMigration(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after migration returned error: %v", err)
	}
}

func TestCheck_NewerSchema(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_migrations SET version = version + 100"); err != nil {
		t.Fatal(err)
	}
	if err := Check(db); err == nil {
		t.Error("Check() expected error for a schema newer than the binary")
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}
	if err := Up(db); err != nil {
		t.Errorf("Second Up() failed: %v (should be idempotent)", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after double migration returned error: %v", err)
	}
}

func TestDown(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if err := Down(db); err != nil {
		t.Fatalf("Down() failed: %v", err)
	}

	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='photos'").Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("photos table still present after Down(): %v", err)
	}
}

func TestLatest(t *testing.T) {
	v, err := Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if v != 1 {
		t.Errorf("Latest() = %d, want 1", v)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO photos (path, identifier, captured_at_ms, utc_offset, run_id, indexed_at)
		VALUES ('/p/a.jpg', '01', 1, '+00:00', 'non-existent-run', datetime('now'))
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_CapturedAtNotBeforeEpoch(t *testing.T) {
	db := openTestDB(t)

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO runs (id, command, started_at) VALUES ('r1', 'index', datetime('now'))"); err != nil {
		t.Fatalf("Failed to insert run: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO photos (path, identifier, captured_at_ms, utc_offset, run_id, indexed_at)
		VALUES ('/p/a.jpg', '01', -1, '+00:00', 'r1', datetime('now'))
	`)
	if err == nil {
		t.Error("Expected check constraint violation for a pre-epoch capture time")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
