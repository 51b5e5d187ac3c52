// Package dbtest opens throwaway in-memory databases with the full schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"ms-restaurant/internal/database"
	"ms-restaurant/internal/database/migrations"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// New returns a migrated in-memory database closed at test cleanup.
func New(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	bunDB, err := database.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), nil)
	if err := runner.RunMigrations(); err != nil {
		bunDB.Close()
		t.Fatalf("Failed to migrate in-memory database: %v", err)
	}

	t.Cleanup(func() { bunDB.Close() })
	return bunDB
}
