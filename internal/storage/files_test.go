package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"franchisehub-api/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStoresFileUnderPublicPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "/uploads", 1, logger.NewTestLogger(t))
	require.NoError(t, err)

	url, err := store.Save("statement.PDF", strings.NewReader("%PDF-1.4 contents"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"), "extension is lowercased: %s", url)

	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 contents", string(data))
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "/uploads", 1, logger.NewNoOpLogger())
	require.NoError(t, err)

	huge := strings.NewReader(strings.Repeat("a", 1024*1024+1))
	_, err = store.Save("big.pdf", huge)
	require.Error(t, err)

	// Nothing left behind on disk.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveHandlesMissingExtension(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "/uploads/", 1, logger.NewNoOpLogger())
	require.NoError(t, err)

	url, err := store.Save("statement", strings.NewReader("data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.NotContains(t, strings.TrimPrefix(url, "/uploads/"), "/")
}

func TestNewFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewFileStore(dir, "/uploads", 1, logger.NewNoOpLogger())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
