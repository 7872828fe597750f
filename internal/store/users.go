package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrUserNotFound  = errors.New("store: user not found")
	ErrUsernameTaken = errors.New("store: username taken")
)

// User matches the users table.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	GamesPlayed  int
	Wins         int
	Streak       int
	BestChain    int
}

// Users reads and writes registered accounts.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create inserts a user with an already hashed password.
func (u *Users) Create(ctx context.Context, id, username, passwordHash string) (*User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	err := execBuilder(ctx, u.db, psq.Insert("users").
		Columns("id", "username", "password_hash", "created_at").
		Values(id, username, passwordHash, now.Format(time.RFC3339)))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// ByUsername looks a user up case-insensitively.
func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	return u.one(ctx, sq.Expr("lower(username) = lower(?)", username))
}

func (u *Users) ByID(ctx context.Context, id string) (*User, error) {
	return u.one(ctx, sq.Eq{"id": id})
}

func (u *Users) one(ctx context.Context, where sq.Sqlizer) (*User, error) {
	query, args, err := psq.
		Select("id", "username", "password_hash", "created_at", "games_played", "wins", "streak", "best_chain").
		From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	var usr User
	var created string
	err = u.db.QueryRowContext(ctx, query, args...).Scan(
		&usr.ID, &usr.Username, &usr.PasswordHash, &created,
		&usr.GamesPlayed, &usr.Wins, &usr.Streak, &usr.BestChain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	usr.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &usr, nil
}
