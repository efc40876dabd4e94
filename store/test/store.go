package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/store"
	"github.com/hrygo/todoassist/store/db"
)

// NewTestingStore opens a migrated sqlite store in a temp directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: "sqlite",
		DSN:    filepath.Join(dir, "todoassist_test.db"),
	}
	require.NoError(t, p.Validate())

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(ctx))
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}
