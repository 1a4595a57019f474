package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesBookkeepingSchema(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='load_runs'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "load_runs", name)
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		s.Close()
	}
}

func TestRecordRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	require.NoError(t, s.RecordRun(ctx, started, time.Now(), 5, 1234, "ok"))
	require.NoError(t, s.RecordRun(ctx, started, time.Now(), 2, 0, "failed"))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM load_runs").Scan(&count))
	assert.Equal(t, 2, count)

	var status string
	var rows int
	require.NoError(t, s.db.QueryRow(
		"SELECT status, rows_loaded FROM load_runs ORDER BY id LIMIT 1",
	).Scan(&status, &rows))
	assert.Equal(t, "ok", status)
	assert.Equal(t, 1234, rows)
}
