package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionFromFilename(t *testing.T) {
	cases := map[string]string{
		"2026-10-19-001-initial-schema.sql":        "initial schema",
		"2026-10-19-002-intake-and-weight-log.sql": "intake and weight log",
		"no-prefix.sql":                            "no prefix",
	}
	for in, want := range cases {
		assert.Equal(t, want, descriptionFromFilename(in), in)
	}
}

func TestMigrationFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"2026-10-20-001-b.sql",
		"2026-10-19-002-a.sql",
		"2026-10-19-001-first.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "2026-10-19-001-first.sql", filepath.Base(files[0]))
	assert.Equal(t, "2026-10-19-002-a.sql", filepath.Base(files[1]))
	assert.Equal(t, "2026-10-20-001-b.sql", filepath.Base(files[2]))
}

func TestMigrationFiles_RepoSchemaPresent(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "db"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}
