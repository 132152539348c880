package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"users", "notification_types", "notification_preferences"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	var on int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM t WHERE a = ? AND b = ?`

	if got := SQLite.Rebind(q); got != q {
		t.Errorf("sqlite rebind = %q, want unchanged", got)
	}
	want := `SELECT id FROM t WHERE a = $1 AND b = $2`
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Exec(`INSERT INTO notification_types (name) VALUES ('SCORE_CHANGES')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(`INSERT INTO notification_types (name) VALUES ('SCORE_CHANGES')`)
	if err == nil {
		t.Fatal("expected error for duplicate name")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("IsUniqueViolation(plain error) = true, want false")
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := db.InTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO notification_types (name) VALUES ('TOP_PRIORITIES')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notification_types`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}

func TestInTxCommits(t *testing.T) {
	db := openTestDB(t)

	err := db.InTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO notification_types (name) VALUES ('TOP_PRIORITIES')`)
		return err
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notification_types`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
