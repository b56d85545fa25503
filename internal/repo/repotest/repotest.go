// Package repotest opens migrated in-memory databases for tests.
package repotest

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/pkg/db"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := &repo.GormRepo{DB: gdb}
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func NewRepo(t testing.TB) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: NewDB(t)}
}
