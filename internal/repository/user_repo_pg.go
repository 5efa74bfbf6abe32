package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
)

// UserRepository accesses the users table. Usernames are stored lowercase;
// callers normalize before lookup.
type UserRepository interface {
	// ByUsername returns (nil, nil) when no such user exists.
	ByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Balance(ctx context.Context, username string) (int, error)
	UpdateBalance(ctx context.Context, username string, balance int) error
}

type PGUserRepository struct {
	q Querier
}

func NewUserRepository(q Querier) UserRepository {
	return &PGUserRepository{q: q}
}

func (r *PGUserRepository) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT username, password_hash, salt, balance FROM users WHERE username = $1`, username)
	var u domain.User
	if err := row.Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.Balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.q.Exec(ctx, `INSERT INTO users (username, password_hash, salt, balance) VALUES ($1, $2, $3, $4)`,
		u.Username, u.PasswordHash, u.Salt, u.Balance)
	return err
}

func (r *PGUserRepository) Balance(ctx context.Context, username string) (int, error) {
	var balance int
	err := r.q.QueryRow(ctx, `SELECT balance FROM users WHERE username = $1`, username).Scan(&balance)
	return balance, err
}

func (r *PGUserRepository) UpdateBalance(ctx context.Context, username string, balance int) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET balance = $1 WHERE username = $2`, balance, username)
	return err
}

var _ UserRepository = (*PGUserRepository)(nil)
