package outbox

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox", "mail.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_EnqueuePeekRemove(t *testing.T) {
	store := openStore(t)

	first, err := store.Enqueue(Message{Kind: KindPasswordReset, To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, defaultPriority, first.Priority)

	_, err = store.Enqueue(Message{To: "b@example.com", CreatedAt: first.CreatedAt.Add(time.Millisecond)})
	require.NoError(t, err)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	batch, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a@example.com", batch[0].To)
	assert.Equal(t, "b@example.com", batch[1].To)

	require.NoError(t, store.Remove(batch[0]))
	size, err = store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestStore_PriorityOrdering(t *testing.T) {
	store := openStore(t)
	now := time.Now()

	_, err := store.Enqueue(Message{To: "low@example.com", Priority: 5, CreatedAt: now})
	require.NoError(t, err)
	_, err = store.Enqueue(Message{To: "high@example.com", Priority: 1, CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	batch, err := store.Peek(1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "high@example.com", batch[0].To)
}

func TestStore_RetryMovesToBack(t *testing.T) {
	store := openStore(t)
	now := time.Now().Add(-time.Minute)

	_, err := store.Enqueue(Message{To: "a@example.com", CreatedAt: now})
	require.NoError(t, err)
	_, err = store.Enqueue(Message{To: "b@example.com", CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	batch, err := store.Peek(1)
	require.NoError(t, err)
	require.NoError(t, store.Retry(batch[0], errors.New("smtp down")))

	batch, err = store.Peek(10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "b@example.com", batch[0].To)
	assert.Equal(t, "a@example.com", batch[1].To)
	assert.Equal(t, 1, batch[1].Attempts)
	assert.Equal(t, "smtp down", batch[1].LastError)
}

func TestStore_RemoveByID(t *testing.T) {
	store := openStore(t)
	msg, err := store.Enqueue(Message{To: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, store.Remove(Message{ID: msg.ID}))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_Purge(t *testing.T) {
	store := openStore(t)
	_, err := store.Enqueue(Message{To: "old@example.com", CreatedAt: time.Now().Add(-48 * time.Hour)})
	require.NoError(t, err)
	_, err = store.Enqueue(Message{To: "new@example.com"})
	require.NoError(t, err)

	removed, err := store.Purge(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	batch, err := store.Peek(10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "new@example.com", batch[0].To)
}

func TestStore_NilSafe(t *testing.T) {
	var store *Store
	_, err := store.Enqueue(Message{})
	assert.Error(t, err)
	_, err = store.Size()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
