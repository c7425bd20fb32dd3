package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/storage"
	"saldo/internal/storage/storetest"
)

func ownerFixture() core.Owner {
	return core.Owner{ID: "6f1c2a9e-7d7b-4a53-9b1e-3f0c5f9d2a10", Email: "demo@local"}
}

func newSQLite(t *testing.T) storage.Store {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "saldo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storetest.Run(t, newSQLite)
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("SALDO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SALDO_TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) storage.Store {
		// every subtest starts from an empty schema
		require.NoError(t, storage.RollbackMigrations(storage.Postgres, dsn))
		repo, err := storage.NewPostgresRepository(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saldo.db")
	dsn := storage.SQLiteDSN(path)

	version, dirty, err := storage.MigrationVersion(storage.SQLite, dsn)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, storage.RunMigrations(storage.SQLite, dsn))
	require.NoError(t, storage.RunMigrations(storage.SQLite, dsn))

	version, dirty, err = storage.MigrationVersion(storage.SQLite, dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, storage.RollbackMigrations(storage.SQLite, dsn))
	version, _, err = storage.MigrationVersion(storage.SQLite, dsn)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saldo.db")
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.InsertOwner(ctx, ownerFixture()))
	require.NoError(t, repo.Close())

	repo, err = storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.FindOwnerByEmail(ctx, ownerFixture().Email)
	require.NoError(t, err)
	assert.Equal(t, ownerFixture(), got)
}
