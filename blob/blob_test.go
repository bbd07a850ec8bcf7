package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutAndRead(t *testing.T) {
	store := NewMemory()
	store.Put("payloads/txn-1.json", []byte(`{"filename":""}`))

	payload, err := store.Read(context.Background(), "payloads/txn-1.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"filename":""}`, string(payload))
}

func TestMemory_NotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.Read(context.Background(), "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectory_Read(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "msg.json"), []byte("content"), 0o644))

	store := NewDirectory(dir)
	payload, err := store.Read(context.Background(), "msg.json")
	require.NoError(t, err)
	assert.Equal(t, "content", string(payload))
}

func TestDirectory_NotFound(t *testing.T) {
	store := NewDirectory(t.TempDir())

	_, err := store.Read(context.Background(), "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirectory_ConfinedToRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inside.txt"), []byte("ok"), 0o644))

	store := NewDirectory(dir)
	_, err := store.Read(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}
