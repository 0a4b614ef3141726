package localdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestOpen_CreatesSchema(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// The metadata table must exist after migration.
	_, err = db.Exec(`INSERT INTO metadata (key, value) VALUES ('k', x'01')`)
	require.NoError(t, err)

	var value []byte
	err = db.QueryRow(`SELECT value FROM metadata WHERE key = 'k'`).Scan(&value)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, value)
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	dsn := "file:" + t.TempDir() + "/dashboard.db"
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
