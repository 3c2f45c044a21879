package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-helper/assets"
	"github.com/robalobadob/wordle-helper/internal/session"
	"github.com/robalobadob/wordle-helper/internal/testsuite"
	"github.com/robalobadob/wordle-helper/internal/tracker"
)

func sampleSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(session.Options{Enforce: true})
	for _, k := range []string{"c", "r", "a", "n", "e"} {
		require.NoError(t, s.Key(k))
	}
	_, err := s.Click(0, 0)
	require.NoError(t, err)
	return s
}

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, ctx context.Context, st Store) {
	t.Run("save then get", func(t *testing.T) {
		// Given: a session with one tagged cell
		s := sampleSession(t)

		// When: it is saved and read back
		require.NoError(t, st.Save(ctx, s))
		got, err := st.Get(ctx, s.ID)

		// Then: the board and its derived constraints survive
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.True(t, got.Enforce)
		assert.Equal(t, "crane", got.Board.Rows()[0].Word())
		assert.Equal(t, map[int]string{0: "c"}, got.Board.Positions())
	})

	t.Run("save overwrites", func(t *testing.T) {
		s := sampleSession(t)
		require.NoError(t, st.Save(ctx, s))

		require.NoError(t, s.AddRow())
		require.NoError(t, st.Save(ctx, s))

		got, err := st.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, got.Board.Rows(), 2)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		s := sampleSession(t)
		require.NoError(t, st.Save(ctx, s))

		got, err := st.Get(ctx, s.ID)
		require.NoError(t, err)
		got.Board.Reset()

		again, err := st.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "crane", again.Board.Rows()[0].Word())
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, st.Delete(ctx, "missing"), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := sampleSession(t)
		require.NoError(t, st.Save(ctx, s))

		require.NoError(t, st.Delete(ctx, s.ID))

		_, err := st.Get(ctx, s.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// purgeStale checks that a Purger drops idle sessions and keeps fresh ones.
func purgeStale(t *testing.T, ctx context.Context, st Store) {
	// Given: one stale and one fresh session
	stale := sampleSession(t)
	stale.UpdatedAt = time.Now().Add(-48 * time.Hour)
	fresh := sampleSession(t)
	require.NoError(t, st.Save(ctx, stale))
	require.NoError(t, st.Save(ctx, fresh))

	// When: purging everything older than a day
	p, ok := st.(Purger)
	require.True(t, ok)
	n, err := p.PurgeBefore(ctx, time.Now().Add(-24*time.Hour))

	// Then: only the stale one is gone
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = st.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	exercise(t, context.Background(), st)

	t.Run("purge drops stale sessions", func(t *testing.T) {
		purgeStale(t, context.Background(), st)
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "helper.db")

	st, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	exercise(t, ctx, st)

	t.Run("migrations are idempotent", func(t *testing.T) {
		again, err := NewSQLiteStore(ctx, path)
		require.NoError(t, err)
		assert.NoError(t, again.Close())
	})

	t.Run("every migration is recorded once", func(t *testing.T) {
		// Given: a fresh database migrated twice
		db, err := openDB(filepath.Join(t.TempDir(), "fresh.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, migrate(ctx, db))
		require.NoError(t, migrate(ctx, db))

		// When: reading the bookkeeping table
		want, err := assets.Migrations()
		require.NoError(t, err)
		rows, err := db.QueryContext(ctx, `SELECT name FROM _migrations ORDER BY name`)
		require.NoError(t, err)
		defer rows.Close()
		var names []string
		for rows.Next() {
			var n string
			require.NoError(t, rows.Scan(&n))
			names = append(names, n)
		}
		require.NoError(t, rows.Err())

		// Then: one row per embedded script, and the schema is in place
		require.Len(t, names, len(want))
		for i, m := range want {
			assert.Equal(t, m.Name, names[i])
		}
		assert.Contains(t, names, "001_sessions.sql")
		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count))
	})

	t.Run("purge drops stale sessions", func(t *testing.T) {
		purgeStale(t, ctx, st)
	})
}

func TestRedisStore(t *testing.T) {
	ctx, client := testsuite.Redis(t)

	st := NewRedisStoreFromClient(client, time.Hour)

	exercise(t, ctx, st)

	t.Run("keys carry the ttl", func(t *testing.T) {
		s := sampleSession(t)
		require.NoError(t, st.Save(ctx, s))

		ttl, err := client.TTL(ctx, sessionKeyPrefix+s.ID).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("cycle order survives", func(t *testing.T) {
		s := session.New(session.Options{Cycle: tracker.CycleAbsentFirst})
		require.NoError(t, st.Save(ctx, s))

		got, err := st.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, tracker.CycleAbsentFirst, got.Board.Order())
	})
}
