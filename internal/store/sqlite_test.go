package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/shiritori/assets"
	"github.com/robalobadob/shiritori/internal/game"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db, assets.Migrations()))
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	require.NoError(t, Migrate(db, assets.Migrations()))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM _migrations`))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM daily_results`))
}

func TestMigrate_OrderAndSelfManaged(t *testing.T) {
	t.Parallel()
	db, err := OpenDB(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fsys := fstest.MapFS{
		"0002_b.sql": {Data: []byte(`INSERT INTO a(v) VALUES ('second');`)},
		"0001_a.sql": {Data: []byte(`CREATE TABLE a (v TEXT);`)},
		"0003_c.sql": {Data: []byte("BEGIN TRANSACTION;\nINSERT INTO a(v) VALUES ('third');\nCOMMIT;")},
		"README.md":  {Data: []byte(`ignored`)},
	}
	require.NoError(t, Migrate(db, fsys))
	require.NoError(t, Migrate(db, fsys))

	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM a`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM _migrations`))
}

func TestMigrate_FailureIsNotRecorded(t *testing.T) {
	t.Parallel()
	db, err := OpenDB(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(db, fstest.MapFS{"0001_bad.sql": {Data: []byte(`CREATE TABLE;`)}})
	require.Error(t, err)
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM _migrations`))
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := NewUsers(openTestDB(t))

	u, err := users.Create(ctx, "u1", "Alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)

	_, err = users.Create(ctx, "u2", "alice", "hash")
	require.ErrorIs(t, err, ErrUsernameTaken)

	got, err := users.ByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, u.CreatedAt.Unix(), got.CreatedAt.Unix())

	_, err = users.ByID(ctx, "nope")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecorder_LifecycleAndStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUsers(db)
	rec := NewRecorder(db)

	_, err := users.Create(ctx, "u1", "alice", "hash")
	require.NoError(t, err)
	owner := Owner{UserID: "u1"}

	g := newGame(t)
	require.NoError(t, rec.Start(ctx, g, owner))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM turns WHERE game_id=?`, g.ID))

	_, err = g.ResolveTurn("イカ")
	require.NoError(t, err)
	require.NoError(t, rec.Sync(ctx, g))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM turns WHERE game_id=?`, g.ID))
	assert.Equal(t, 1, count(t, db, `SELECT chain FROM games WHERE id=?`, g.ID))

	_, err = g.ResolveTurn("タコ")
	require.NoError(t, err)
	require.NoError(t, rec.Sync(ctx, g))
	require.NoError(t, rec.Sync(ctx, g))

	rows, err := rec.GamesByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bot_won", rows[0].Status)
	assert.Equal(t, "Bot", rows[0].Winner)
	assert.Equal(t, "NotFoundInDictionary", rows[0].Reason)
	assert.Equal(t, "unidic", rows[0].Source)
	assert.NotEmpty(t, rows[0].FinishedAt)

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.GamesPlayed)
	assert.Equal(t, 0, u.Wins)
	assert.Equal(t, 0, u.Streak)
	assert.Equal(t, 1, u.BestChain)
}

func TestRecorder_HumanWinBumpsStreak(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUsers(db)
	rec := NewRecorder(db)
	_, err := users.Create(ctx, "u1", "alice", "hash")
	require.NoError(t, err)
	owner := Owner{UserID: "u1"}

	for i := 0; i < 2; i++ {
		// the bot's only カ word is the seed, so it loses on a duplicate
		g := newGameWithSeed(t, "カイ", "カイ")
		require.NoError(t, rec.Start(ctx, g, owner))
		j, err := g.ResolveTurn("イカ")
		require.NoError(t, err)
		require.Equal(t, game.Human, j.Winner)
		require.NoError(t, rec.Sync(ctx, g))
	}

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.GamesPlayed)
	assert.Equal(t, 2, u.Wins)
	assert.Equal(t, 2, u.Streak)
	assert.Equal(t, 1, u.BestChain)

	g := newGame(t)
	require.NoError(t, rec.Start(ctx, g, owner))
	_, err = g.ResolveTurn("タコ")
	require.NoError(t, err)
	require.NoError(t, rec.Sync(ctx, g))

	u, err = users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, u.GamesPlayed)
	assert.Equal(t, 2, u.Wins)
	assert.Equal(t, 0, u.Streak)
}

func TestRecorder_ClaimAnon(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	rec := NewRecorder(db)
	_, err := NewUsers(db).Create(ctx, "u1", "alice", "hash")
	require.NoError(t, err)

	g := newGame(t)
	require.NoError(t, rec.Start(ctx, g, Owner{AnonID: "anon-1"}))

	rows, err := rec.GamesByUser(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, rec.ClaimAnon(ctx, "anon-1", "u1"))
	require.NoError(t, rec.ClaimAnon(ctx, "", "u1"))

	rows, err = rec.GamesByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, g.ID, rows[0].ID)
	assert.Equal(t, "playing", rows[0].Status)
}

func TestRecorder_ClaimAnonCountsFinishedGames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUsers(db)
	rec := NewRecorder(db)
	_, err := users.Create(ctx, "u1", "alice", "hash")
	require.NoError(t, err)
	guest := Owner{AnonID: "anon-1"}

	won := newGameWithSeed(t, "カイ", "カイ")
	require.NoError(t, rec.Start(ctx, won, guest))
	_, err = won.ResolveTurn("イカ")
	require.NoError(t, err)
	require.NoError(t, rec.Sync(ctx, won))

	open := newGame(t)
	require.NoError(t, rec.Start(ctx, open, guest))

	u, err := users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, u.GamesPlayed)

	require.NoError(t, rec.ClaimAnon(ctx, "anon-1", "u1"))
	require.NoError(t, rec.ClaimAnon(ctx, "anon-1", "u1"))

	u, err = users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.GamesPlayed)
	assert.Equal(t, 1, u.Wins)
	assert.Equal(t, 1, u.Streak)
	assert.Equal(t, 1, u.BestChain)

	// the open game is counted when it ends
	_, err = open.ResolveTurn("タコ")
	require.NoError(t, err)
	require.NoError(t, rec.Sync(ctx, open))

	u, err = users.ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.GamesPlayed)
	assert.Equal(t, 1, u.Wins)
	assert.Equal(t, 0, u.Streak)
}
