package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestOpenMigratedSeedsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kw.db")

	db, err := OpenMigrated(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 7, count(t, db, "accounts"))
	require.Equal(t, 4, count(t, db, "providers"))
	require.NoError(t, db.Close())

	db, err = OpenMigrated(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.Equal(t, 7, count(t, db, "accounts"))
	require.Equal(t, 3, count(t, db, "managers"))
	require.Equal(t, 5, count(t, db, "commissions"))
	require.Equal(t, 6, count(t, db, "tasks"))

	var id string
	require.NoError(t, db.QueryRow(`SELECT id FROM accounts WHERE name = 'ABC Corporation'`).Scan(&id))
	require.Equal(t, SeedID("account", "ABC Corporation"), id)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMigrated(ctx, filepath.Join(t.TempDir(), "kw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
			return err
		}
		return sql.ErrTxDone
	})
	require.ErrorIs(t, err, sql.ErrTxDone)
	require.Equal(t, 7, count(t, db, "accounts"))
}
