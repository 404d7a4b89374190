package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, name string, profile Profile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to open %s: %v", name, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewCreatesDatabase(t *testing.T) {
	db := openTestDB(t, "screener", ProfileStandard)
	if err := db.Conn().Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	for _, name := range []string{"screener", "weights"} {
		db := openTestDB(t, name, ProfileStandard)
		if err := db.Migrate(); err != nil {
			t.Fatalf("First migration of %s: %v", name, err)
		}
		if err := db.Migrate(); err != nil {
			t.Fatalf("Second migration of %s: %v", name, err)
		}
	}
}

func TestMigrateUnknownNameIsNoop(t *testing.T) {
	db := openTestDB(t, "scratch", ProfileStandard)
	if err := db.Migrate(); err != nil {
		t.Fatalf("Unknown schema name must be a no-op: %v", err)
	}
}

func TestWithTransactionCommits(t *testing.T) {
	db := openTestDB(t, "scratch", ProfileStandard)
	if _, err := db.Conn().Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatal(err)
	}

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO kv (k, v) VALUES ('a', '1')`)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	var v string
	if err := db.Conn().QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v); err != nil || v != "1" {
		t.Fatalf("Committed row missing: %v %q", err, v)
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := openTestDB(t, "scratch", ProfileStandard)
	if _, err := db.Conn().Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv (k, v) VALUES ('a', '1')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped error, got %v", err)
	}

	var n int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Rolled-back row persisted, count %d", n)
	}
}
