package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveSaveAndOpen(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("employment-records-20250310.csv", []byte("id,event_type\n"))
	require.NoError(t, err)
	require.Equal(t, "employment-records-20250310.csv", name)

	file, err := archive.Open(name)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "id,event_type\n", string(content))
}

func TestArchiveCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("stale.csv", []byte("old"))
	require.NoError(t, err)
	_, err = archive.Save("fresh.csv", []byte("new"))
	require.NoError(t, err)

	stale := filepath.Join(dir, "stale.csv")
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	deleted, err := archive.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"stale.csv"}, deleted)

	_, err = os.Stat(filepath.Join(dir, "fresh.csv"))
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}
