package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiredesk/portal/storage"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	data := []byte("%PDF-1.4 fake resume")
	stored, err := store.Save(context.Background(), "owner-1", "my resume.pdf", "application/pdf", data)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "owner-1", stored.OwnerID)
	assert.Equal(t, "my resume.pdf", stored.FileName)
	assert.Equal(t, int64(len(data)), stored.Size)
	assert.True(t, strings.HasPrefix(stored.Ref, "/resumes/"))
	assert.NotContains(t, stored.Ref, " ")

	// Bytes land under the base directory with the reference's file name.
	onDisk := filepath.Join(dir, strings.TrimPrefix(stored.Ref, "/resumes/"))
	got, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStoreSaveEmptyPayload(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "owner-1", "resume.pdf", "application/pdf", nil)
	assert.Error(t, err)
}

func TestLocalStoreSanitizesFileNames(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)

	stored, err := store.Save(context.Background(), "owner-1", "../../etc/passwd", "text/plain", []byte("x"))
	require.NoError(t, err)

	// Path traversal is stripped; the artifact stays inside the base dir.
	assert.True(t, strings.HasSuffix(stored.Ref, "passwd"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
