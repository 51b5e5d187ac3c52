package migrations_test

import (
	"context"
	"fmt"
	"testing"

	"ms-restaurant/internal/database"
	"ms-restaurant/internal/database/migrations"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func openMemory(t *testing.T) *bun.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestRunMigrationsCreatesSchema(t *testing.T) {
	db := openMemory(t)
	runner := migrations.NewRunner(db, migrations.DefaultOptions(), nil)

	require.NoError(t, runner.RunMigrations())

	for _, table := range []string{
		"restaurants", "restaurant_fees", "banners", "menu_categories", "menu_items",
		"clients", "client_addresses", "employees", "newsletters", "app_settings",
		"orders", "poster_clients", "restaurant_telegram_settings",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	version, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)

	// A second run is a no-op.
	assert.NoError(t, runner.RunMigrations())
}

func TestMigrateToAndDown(t *testing.T) {
	db := openMemory(t)
	runner := migrations.NewRunner(db, migrations.DefaultOptions(), nil)

	require.NoError(t, runner.MigrateTo(1))
	assert.True(t, tableExists(t, db, "restaurants"))
	assert.False(t, tableExists(t, db, "orders"))

	require.NoError(t, runner.MigrateTo(3))
	assert.True(t, tableExists(t, db, "orders"))

	require.NoError(t, runner.MigrateDown())
	assert.False(t, tableExists(t, db, "restaurants"))

	version, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
