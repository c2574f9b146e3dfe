package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/bizdesk/internal/client/storage"
)

// createTestStorage создает временное BoltDB хранилище
func createTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "local_test.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store, dbPath
}

func TestNew_Success(t *testing.T) {
	store, dbPath := createTestStorage(t)

	// Проверяем что файл БД действительно создан
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLocalStore) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	ctx := context.Background()
	// Родительская директория не существует
	invalidPath := filepath.Join(t.TempDir(), "missing", "dir", "local.db")
	store, err := New(ctx, invalidPath)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Nil(t, store.db)

	// Второй вызов Close ничего не делает
	assert.NoError(t, store.Close())

	_, err = store.Load(ctx, "key")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = store.Save(ctx, "key", []byte("{}"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestLoad_NotFound(t *testing.T) {
	store, _ := createTestStorage(t)

	data, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
	assert.Nil(t, data)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)

	require.NoError(t, store.Save(ctx, "bizdesk", []byte(`{"clients":[]}`)))

	data, err := store.Load(ctx, "bizdesk")
	require.NoError(t, err)
	assert.JSONEq(t, `{"clients":[]}`, string(data))

	// Перезапись целиком заменяет значение
	require.NoError(t, store.Save(ctx, "bizdesk", []byte(`{"tasks":[]}`)))
	data, err = store.Load(ctx, "bizdesk")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, string(data))

	// Другие ключи не затронуты
	_, err = store.Load(ctx, "other")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestSaveAndLoad_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "bizdesk", []byte(`{"lastSync":"x"}`)))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	data, err := reopened.Load(ctx, "bizdesk")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastSync":"x"}`, string(data))
}

func TestLoad_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketLocalStore)
	})
	require.NoError(t, err)

	_, err = store.Load(ctx, "bizdesk")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "local store bucket not found")

	err = store.Save(ctx, "bizdesk", []byte("{}"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "local store bucket not found")
}

var _ storage.SnapshotStorage = (*Storage)(nil)
