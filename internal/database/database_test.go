package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data.sqlite", "data.sqlite"},
		{"  /var/lib/app/data.sqlite ", "/var/lib/app/data.sqlite"},
		{"file:///var/lib/app/data.sqlite", filepath.FromSlash("/var/lib/app/data.sqlite")},
		{"file:relative.sqlite", "relative.sqlite"},
	}
	for _, tt := range tests {
		got, err := ResolvePath(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ResolvePath("file://")
	assert.Error(t, err)
}

func TestOpenAppliesPragmas(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}
