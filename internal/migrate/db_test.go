package migrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func init() {
	RegisterConstraintChecker(func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
	})
}

// newTestDB opens an isolated in-memory store. The pool is pinned to a
// single connection so the memory database survives across queries and
// transactions.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestIdentityMap returns a target store with the identity map table
// in place, plus the map bound to it.
func newTestIdentityMap(t *testing.T) (*sql.DB, *IdentityMap) {
	t.Helper()
	db := newTestDB(t)
	idmap := NewIdentityMap(db)
	if err := idmap.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("creating identity map schema: %v", err)
	}
	return db, idmap
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
