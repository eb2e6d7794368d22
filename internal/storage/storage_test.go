package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/pkg/constants"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	db, err := OpenSQLite(ctx, zap.NewNop(), filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": db,
	}
}

func TestStoresRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			key := "business-case:business_data"

			_, err := store.Load(ctx, key)
			assert.True(t, errors.Is(err, ErrNotFound), "Load() before Save error = %v", err)

			require.NoError(t, store.Save(ctx, key, []byte(`{"a":1}`)))
			data, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(data))

			require.NoError(t, store.Save(ctx, key, []byte(`{"a":2}`)))
			data, err = store.Load(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(data))

			require.NoError(t, store.Remove(ctx, key))
			_, err = store.Load(ctx, key)
			assert.True(t, errors.Is(err, ErrNotFound))

			assert.NoError(t, store.Remove(ctx, key), "removing a missing key should succeed")
		})
	}
}

func TestStoresHonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Save(ctx, "k", []byte("v")))
		})
	}
}

func TestMemoryCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", buf))
	buf[0] = 'x'

	data, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestFileLayout(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, f.Save(ctx, "business-case:mode", []byte(`"guided"`)))
	_, err = os.Stat(filepath.Join(f.Dir(), "business-case_mode.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(f.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should not be left behind")

	_, err = NewFile("")
	assert.Error(t, err)
}

func TestSQLiteMigrationsAndPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := OpenSQLite(ctx, nil, path)
	require.NoError(t, err)
	version, err := db.Version()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, db.Save(ctx, "b", []byte("2")))
	require.NoError(t, db.Save(ctx, "a", []byte("1")))
	require.NoError(t, db.Close())

	reopened, err := OpenSQLite(ctx, nil, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	keys, err := reopened.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		driver  string
		path    string
		wantErr bool
	}{
		{driver: "", path: ""},
		{driver: constants.StorageDriverMemory},
		{driver: constants.StorageDriverFile, path: filepath.Join(dir, "files")},
		{driver: constants.StorageDriverSQLite, path: filepath.Join(dir, "open.db")},
		{driver: constants.StorageDriverSQLite, path: "", wantErr: true},
		{driver: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			store, err := Open(ctx, nil, tt.driver, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}
