package txn

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saasha05/FlightBookingSystem/internal/repository"
	"go.uber.org/zap"
)

// PGCoordinator runs operations on a connection pinned for the lifetime of
// one session, so VerifyIdle observes the same backend the operation used.
type PGCoordinator struct {
	conn   *pgxpool.Conn
	policy RetryPolicy
	budget *atomic.Int32
	log    *zap.Logger
}

// NewPGCoordinator wraps an acquired connection. budget is the shared
// create-user retry budget; log may be nil.
func NewPGCoordinator(conn *pgxpool.Conn, policy RetryPolicy, budget *atomic.Int32, log *zap.Logger) *PGCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &PGCoordinator{conn: conn, policy: policy, budget: budget, log: log}
}

func (c *PGCoordinator) Serializable(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) error {
	return Retry(ctx, c.policy, nil, c.log, op, func() error { return c.attempt(ctx, fn) })
}

func (c *PGCoordinator) SerializableBudgeted(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) error {
	return Retry(ctx, c.policy, c.budget, c.log, op, func() error { return c.attempt(ctx, fn) })
}

// attempt is one full begin/commit-or-rollback cycle. A commit that fails
// with a serialization conflict surfaces to the retry loop like any other
// transient error.
func (c *PGCoordinator) attempt(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	tx, err := c.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	if err := fn(ctx, &pgStore{q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// VerifyIdle checks the backend transaction status byte: 'I' is idle
// (autocommit restored), anything else means a transaction was left open.
func (c *PGCoordinator) VerifyIdle(ctx context.Context) error {
	if status := c.conn.Conn().PgConn().TxStatus(); status != 'I' {
		return fmt.Errorf("%w: backend status %q", ErrDanglingTransaction, status)
	}
	return nil
}

func (c *PGCoordinator) Close() {
	c.conn.Release()
}

type pgStore struct {
	q repository.Querier
}

func (s *pgStore) Flights() repository.FlightRepository {
	return repository.NewFlightRepository(s.q)
}

func (s *pgStore) Users() repository.UserRepository {
	return repository.NewUserRepository(s.q)
}

func (s *pgStore) Reservations() repository.ReservationRepository {
	return repository.NewReservationRepository(s.q)
}

var _ Coordinator = (*PGCoordinator)(nil)
