// internal/store/recorder.go
//
// Recorder mirrors games into SQLite for history and player stats.
//
// Tables (see assets/migrations):
//   - games: one row per game with its owner, source, status, winner,
//     reason and chain length.
//   - turns: the played words, keyed by (game_id, seq).
//   - users: games_played / wins / streak / best_chain are bumped once per
//     game, when a game owned by a registered user finishes or when a
//     finished guest game is claimed.
//
// Sync is idempotent: turns are inserted with OR IGNORE and the finish
// update only matches rows still marked as playing, so calling it after
// every turn is safe.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/robalobadob/shiritori/internal/game"
)

// Owner identifies who a game belongs to. Exactly one field is expected to
// be set; a registered user takes precedence over an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

// GameRow is a game as listed in a player's history.
type GameRow struct {
	ID         string `json:"id"`
	Source     string `json:"dictionary"`
	Status     string `json:"status"`
	Winner     string `json:"winner,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Chain      int    `json:"chain"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Recorder writes game progress to the database.
type Recorder struct {
	db *sql.DB
}

// NewRecorder wraps db.
func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

// Start inserts the game row and its opening turns.
func (r *Recorder) Start(ctx context.Context, g *game.Game, owner Owner) error {
	var userID, anonID any
	if owner.UserID != "" {
		userID = owner.UserID
	} else if owner.AnonID != "" {
		anonID = owner.AnonID
	}

	query, args, err := psq.Insert("games").
		Columns("id", "user_id", "anonymous_id", "source", "started_at", "status", "chain").
		Values(g.ID, userID, anonID, string(g.Source), g.StartedAt.UTC().Format(time.RFC3339), string(game.StateInProgress), 0).
		ToSql()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	if err := insertTurns(ctx, tx, g); err != nil {
		return err
	}
	return tx.Commit()
}

// Sync records new turns, the current chain and, once the game is over,
// its outcome. The stats of the user owning the games row are bumped
// exactly once.
func (r *Recorder) Sync(ctx context.Context, g *game.Game) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertTurns(ctx, tx, g); err != nil {
		return err
	}

	upd := psq.Update("games").Set("chain", g.Chain()).Where(sq.Eq{"id": g.ID})
	if !g.Over() {
		if err := execBuilder(ctx, tx, upd); err != nil {
			return fmt.Errorf("update game %s: %w", g.ID, err)
		}
		return tx.Commit()
	}

	j := g.Judgement()
	query, args, err := upd.
		Set("status", string(g.State())).
		Set("winner", j.Winner.String()).
		Set("reason", j.Reason.String()).
		Set("finished_at", time.Now().UTC().Format(time.RFC3339)).
		Where(sq.Eq{"status": string(game.StateInProgress)}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return tx.Commit()
	}
	userID, err := gameOwner(ctx, tx, g.ID)
	if err != nil {
		return fmt.Errorf("game owner %s: %w", g.ID, err)
	}
	if userID != "" {
		if err := bumpStats(ctx, tx, userID, j.Winner == game.Human, g.Chain()); err != nil {
			return fmt.Errorf("bump stats %s: %w", userID, err)
		}
	}
	return tx.Commit()
}

// ClaimAnon transfers an anonymous player's games to a registered user.
// Games that already finished are counted in the user's stats in the order
// they ended; the rest are counted by Sync when they finish.
func (r *Recorder) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	finished, err := finishedGames(ctx, tx, anonID)
	if err != nil {
		return fmt.Errorf("claim %s: %w", anonID, err)
	}
	if err := execBuilder(ctx, tx, psq.Update("games").
		Set("user_id", userID).
		Set("anonymous_id", nil).
		Where(sq.Eq{"anonymous_id": anonID})); err != nil {
		return fmt.Errorf("claim %s: %w", anonID, err)
	}
	for _, f := range finished {
		if err := bumpStats(ctx, tx, userID, f.won, f.chain); err != nil {
			return fmt.Errorf("bump stats %s: %w", userID, err)
		}
	}
	return tx.Commit()
}

type finishedGame struct {
	won   bool
	chain int
}

// finishedGames lists a guest's ended games, oldest finish first.
func finishedGames(ctx context.Context, tx *sql.Tx, anonID string) ([]finishedGame, error) {
	query, args, err := psq.Select("status", "chain").
		From("games").
		Where(sq.And{
			sq.Eq{"anonymous_id": anonID},
			sq.NotEq{"status": string(game.StateInProgress)},
		}).
		OrderBy("finished_at", "rowid").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finishedGame
	for rows.Next() {
		var status string
		var f finishedGame
		if err := rows.Scan(&status, &f.chain); err != nil {
			return nil, err
		}
		f.won = status == string(game.StateHumanWon)
		out = append(out, f)
	}
	return out, rows.Err()
}

// GamesByUser lists a user's most recent games, newest first.
func (r *Recorder) GamesByUser(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := psq.
		Select("id", "source", "status", "COALESCE(winner,'')", "COALESCE(reason,'')", "chain", "started_at", "COALESCE(finished_at,'')").
		From("games").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("started_at DESC", "rowid DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Source, &g.Status, &g.Winner, &g.Reason, &g.Chain, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execBuilder(ctx context.Context, ex execer, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, query, args...)
	return err
}

func insertTurns(ctx context.Context, ex execer, g *game.Game) error {
	ins := psq.Insert("turns").Options("OR IGNORE").Columns("game_id", "seq", "player", "text", "reading")
	for _, t := range g.Turns() {
		ins = ins.Values(g.ID, t.Seq, t.Player.String(), t.Entry.Text, t.Entry.Reading)
	}
	if err := execBuilder(ctx, ex, ins); err != nil {
		return fmt.Errorf("insert turns %s: %w", g.ID, err)
	}
	return nil
}

// gameOwner returns the registered user owning a game, or "" for guests.
func gameOwner(ctx context.Context, tx *sql.Tx, gameID string) (string, error) {
	query, args, err := psq.Select("COALESCE(user_id,'')").From("games").Where(sq.Eq{"id": gameID}).ToSql()
	if err != nil {
		return "", err
	}
	var userID string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&userID)
	return userID, err
}

// bumpStats increments games played and updates wins, streak and best chain.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool, chain int) error {
	query, args, err := psq.Select("games_played", "wins", "streak", "best_chain").
		From("users").Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return err
	}
	var gp, wins, streak, best int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&gp, &wins, &streak, &best); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	if chain > best {
		best = chain
	}
	return execBuilder(ctx, tx, psq.Update("users").
		Set("games_played", gp).
		Set("wins", wins).
		Set("streak", streak).
		Set("best_chain", best).
		Where(sq.Eq{"id": userID}))
}
