package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bizhub/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice notes", "add_invoice_notes"},
		{"Add-Invoice-Notes", "add_invoice_notes"},
		{"add__sales__index", "add_sales_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestList(t *testing.T) {
	src := fstest.MapFS{
		"000002_b.up.sql":   {},
		"000002_b.down.sql": {},
		"000001_a.up.sql":   {},
		"000010_c.up.sql":   {},
		"README.md":         {},
		"bad.up.sql":        {},
	}
	entries, err := List(src)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{1, "a"}, {2, "b"}, {10, "c"}}, entries)
}

func TestList_EmbeddedSchemaIsContiguous(t *testing.T) {
	entries, err := List(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, e.Name)
		_, err := fs.Stat(migrations.FS, fmt.Sprintf("%06d_%s.down.sql", e.Version, e.Name))
		assert.NoError(t, err, "missing down file for %s", e.Name)
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first, err := Create(dir, "Add invoice notes", "Notes column", now)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_invoice_notes.up.sql"), first.UpPath)

	body, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- add_invoice_notes (up)")
	assert.Contains(t, string(body), "-- Notes column")
	assert.FileExists(t, first.DownPath)

	second, err := Create(dir, "index sales", "", now)
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = Create(dir, "!!!", "", now)
	assert.Error(t, err)
}
