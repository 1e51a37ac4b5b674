//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/reachhk/engage/internal/db"
	"github.com/reachhk/engage/internal/models"
	"github.com/reachhk/engage/internal/testutil/testdb"
)

func startDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h.DB
}

func mustSeedUser(t *testing.T, database *sql.DB, id, name string, role models.Role) {
	t.Helper()
	if err := db.UpsertUser(context.Background(), database, models.User{ID: id, FullName: name, Role: role}); err != nil {
		t.Fatal(err)
	}
}
