package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/jokes-gateway/internal/common/db"
	"github.com/AlibekovAA/jokes-gateway/internal/user/domain"
)

var ErrUsernameAlreadyExists = errors.New("username already exists")

var errUserNotFound = errors.New("user not found")

type Repository interface {
	// Insert stores a user whose password is already hashed and returns the
	// stored record with its generated id.
	Insert(ctx context.Context, user domain.User) (domain.User, error)
	// FindByUsername is an exact, case-sensitive lookup. A missing user is
	// reported through the bool, not the error.
	FindByUsername(ctx context.Context, username string) (domain.User, bool, error)
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

func (r *PgRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	start := time.Now()
	row := r.q.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		 RETURNING id, username, password_hash, created_at`,
		user.Username,
		user.PasswordHash,
	)

	var stored domain.User
	err := row.Scan(&stored.ID, &stored.Username, &stored.PasswordHash, &stored.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			db.MeasureQueryDuration("insert user", start)
			return domain.User{}, ErrUsernameAlreadyExists
		}
		return domain.User{}, db.HandleExecError(err, "insert user", start)
	}

	db.MeasureQueryDuration("insert user", start)
	return stored, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	start := time.Now()
	row := r.q.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := db.HandleQueryError(
		row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt),
		errUserNotFound,
		"find user by username",
		start,
	)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}

	return user, true, nil
}

// Ping reports whether the database answers a trivial query.
func (r *PgRepository) Ping(ctx context.Context) error {
	var one int
	return r.q.QueryRow(ctx, `SELECT 1`).Scan(&one)
}
