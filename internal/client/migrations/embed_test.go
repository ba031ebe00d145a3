package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipnote/internal/dbx"
)

func TestUp_CreatesTablesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := dbx.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Up(ctx, db))
	require.NoError(t, Up(ctx, db))

	for _, table := range []string{"metadata", "video_blobs", "image_blobs", "audio_blobs"} {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		require.Equal(t, 1, n, table)
	}
}
