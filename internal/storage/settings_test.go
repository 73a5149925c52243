package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nadgodziny/internal/log"
)

func openTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), log.New(log.DefaultConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSettingsStore_GetMissingKey(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "currentUser")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSettingsStore_PutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "savedOvertimes", []byte(`[{"hours":2.5}]`)))

	got, err := store.Get(ctx, "savedOvertimes")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"hours":2.5}]`), got)
}

func TestSettingsStore_PutReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("first")))
	require.NoError(t, store.Put(ctx, "k", []byte("second")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got)
}

func TestSettingsStore_EmptyValueIsNotMissing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "savedOvertimes", []byte("[]")))

	got, err := store.Get(ctx, "savedOvertimes")
	require.NoError(t, err)
	require.Equal(t, []byte("[]"), got)
}

func TestSettingsStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Delete(ctx, "k"))
}

func TestSettingsStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	logger := log.New(log.DefaultConfig())
	ctx := context.Background()

	store, err := Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "currentUser", []byte(`{"name":"Jan"}`)))
	require.NoError(t, store.Close())

	reopened, err := Open(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "currentUser")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"name":"Jan"}`), got)
}
