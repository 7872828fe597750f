package daily

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Result is one finished daily attempt.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	SeedIndex int    `json:"seedIndex"`
	Chain     int    `json:"chain"`
	ElapsedMs int    `json:"elapsedMs"`
}

// LBRow is one leaderboard line.
type LBRow struct {
	UserID    string `json:"userId"`
	Chain     int    `json:"chain"`
	ElapsedMs int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	query, args, err := psq.Select("COUNT(1)").From("daily_results").
		Where(sq.Eq{"user_id": userID, "date": date}).ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r. A second result for the same user and date is
// ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	query, args, err := psq.Insert("daily_results").Options("OR IGNORE").
		Columns("user_id", "date", "seed_index", "chain", "elapsed_ms").
		Values(r.UserID, r.Date, r.SeedIndex, r.Chain, r.ElapsedMs).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Leaderboard returns the best results for date: longest chain first, then
// fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := psq.Select("user_id", "chain", "elapsed_ms").
		From("daily_results").
		Where(sq.Eq{"date": date}).
		OrderBy("chain DESC", "elapsed_ms ASC", "created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Chain, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
