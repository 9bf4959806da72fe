package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create print jobs", "create_print_jobs"},
		{"Add-Tracking-Code", "add_tracking_code"},
		{"ADD_ORDER_INDEX", "add_order_index"},
		{"add__item__serial", "add_item_serial"},
		{"Orders 2024", "orders_2024"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add print job notes", "Free-form notes on print jobs")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_print_job_notes.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_print_job_notes.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add print job notes")
	assert.Contains(t, string(up), "Free-form notes on print jobs")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "init")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_VersionStaysMonotonic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20990101000000_future.up.sql"), []byte("--"), 0644))

	mf, err := createMigrationAt(dir, "next", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20990101000001", mf.Version)

	// same second twice still yields distinct versions
	at := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := createMigrationAt(dir, "a", "", at)
	require.NoError(t, err)
	b, err := createMigrationAt(dir, "b", "", at)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version, b.Version)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"20240301000003_create_print_jobs.up.sql",
		"20240301000003_create_print_jobs.down.sql",
		"20240301000001_create_identity_tables.up.sql",
		"20240301000001_create_identity_tables.down.sql",
		"20240301000002_create_order_tables.up.sql",
		"README.md",
		"notes.up.sql",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "20240301000009_dir.up.sql"), 0755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "20240301000001_create_identity_tables", migrations[0].Name)
	assert.Equal(t, uint64(20240301000002), migrations[1].Version)
	assert.False(t, migrations[1].HasDown)
	assert.True(t, migrations[2].HasDown)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path/to/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_RepositoryMigrations(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for _, m := range migrations {
		assert.True(t, m.HasDown, "%s has no down migration", m.Name)
	}
}
