package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/shiritori/assets"
	"github.com/robalobadob/shiritori/internal/store"
)

func TestDateKey(t *testing.T) {
	t.Parallel()
	jst := time.FixedZone("JST", 9*60*60)
	// 2024-03-01 08:00 JST is still Feb 29 in UTC
	assert.Equal(t, "2024-02-29", DateKey(time.Date(2024, 3, 1, 8, 0, 0, 0, jst)))
	assert.Equal(t, "2024-03-01", DateKey(time.Date(2024, 3, 1, 10, 0, 0, 0, jst)))
}

func TestSeedIndex(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 5, 5, 1, 0, 0, 0, time.UTC)
	later := time.Date(2024, 5, 5, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, SeedIndex(day, "salt", 97), SeedIndex(later, "salt", 97))
	assert.Equal(t, 0, SeedIndex(day, "salt", 0))
	assert.Equal(t, 0, SeedIndex(day, "salt", 1))

	seen := map[int]bool{}
	for i := 0; i < 60; i++ {
		n := SeedIndex(day.AddDate(0, 0, i), "salt", 10)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 10)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)

	same := 0
	for i := 0; i < 60; i++ {
		d := day.AddDate(0, 0, i)
		if SeedIndex(d, "salt", 1000) == SeedIndex(d, "other", 1000) {
			same++
		}
	}
	assert.Less(t, same, 10, "the salt should change the sequence")
}

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenDB(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db, assets.Migrations()))
	return NewStore(db)
}

func TestStore_OneResultPerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	played, err := s.AlreadyPlayed(ctx, "u1", "2024-05-05")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2024-05-05", SeedIndex: 3, Chain: 4, ElapsedMs: 900}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2024-05-05", SeedIndex: 3, Chain: 40, ElapsedMs: 1}))

	played, err = s.AlreadyPlayed(ctx, "u1", "2024-05-05")
	require.NoError(t, err)
	assert.True(t, played)

	rows, err := s.Leaderboard(ctx, "2024-05-05", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Chain)
}

func TestStore_LeaderboardOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)

	for _, r := range []Result{
		{UserID: "slow", Chain: 5, ElapsedMs: 9000},
		{UserID: "short", Chain: 2, ElapsedMs: 100},
		{UserID: "fast", Chain: 5, ElapsedMs: 3000},
		{UserID: "other-day", Chain: 50, ElapsedMs: 1},
	} {
		r.Date = "2024-05-05"
		if r.UserID == "other-day" {
			r.Date = "2024-05-06"
		}
		require.NoError(t, s.InsertResult(ctx, r))
	}

	rows, err := s.Leaderboard(ctx, "2024-05-05", 20)
	require.NoError(t, err)
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	assert.Equal(t, []string{"fast", "slow", "short"}, ids)

	rows, err = s.Leaderboard(ctx, "2024-05-05", 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.Leaderboard(ctx, "1999-01-01", 20)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
