// Package txn owns transaction demarcation for the booking engine: every
// mutating operation runs inside exactly one serializable transaction,
// transient serialization conflicts are retried by re-running the whole
// operation, and a post-operation check catches transactions left open.
package txn

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saasha05/FlightBookingSystem/internal/repository"
	"go.uber.org/zap"
)

// Store bundles the repositories bound to one in-flight transaction. The
// callback passed to a Coordinator sees all its reads and writes through
// this view; nothing persists unless the transaction commits.
type Store interface {
	Flights() repository.FlightRepository
	Users() repository.UserRepository
	Reservations() repository.ReservationRepository
}

// Coordinator brackets an operation in a serializable transaction and owns
// the retry policy. A coordinator is pinned to one connection and must not
// be shared between concurrently running operations.
type Coordinator interface {
	// Serializable runs fn inside one serializable transaction, committing
	// on nil and rolling back on error. Transient conflicts re-run fn from
	// scratch under the retry policy; fn must confine its side effects to
	// the Store so a retried attempt starts clean.
	Serializable(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) error
	// SerializableBudgeted is Serializable drawing retries from a shared
	// process-wide budget instead of the per-operation attempt limit.
	SerializableBudgeted(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) error
	// VerifyIdle reports ErrDanglingTransaction if the underlying
	// connection is not back in autocommit mode. Callers treat that as a
	// fatal invariant violation.
	VerifyIdle(ctx context.Context) error
	Close()
}

// ErrDanglingTransaction means an operation finished without closing its
// transaction. The isolation contract is broken; the session must stop.
var ErrDanglingTransaction = errors.New("transaction left open after operation")

// Postgres SQLSTATEs that signal a transient conflict between serializable
// transactions. Both resolve by retrying the whole operation.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// IsTransient reports whether err is a store-detected serialization
// conflict or deadlock, i.e. safe to retry after rollback.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected
	}
	return false
}

// RetryPolicy bounds the retry loop for transient conflicts.
type RetryPolicy struct {
	// MaxAttempts caps attempts per operation; 0 retries until a
	// non-transient outcome.
	MaxAttempts int
	// Backoff is the sleep before the second attempt; it doubles per
	// attempt up to MaxBackoff. Zero disables sleeping.
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	d := p.Backoff
	for i := 1; i < attempt && d < p.MaxBackoff; i++ {
		d *= 2
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// Retry runs attempt until it returns nil or a non-transient error. When
// budget is non-nil it is decremented per retry and shared across callers;
// otherwise policy.MaxAttempts applies. The attempt callback performs a
// complete begin/commit-or-rollback cycle, so every retry re-runs the
// originating operation with identical arguments.
func Retry(ctx context.Context, policy RetryPolicy, budget *atomic.Int32, log *zap.Logger, op string, attempt func() error) error {
	for n := 1; ; n++ {
		err := attempt()
		if err == nil || !IsTransient(err) {
			return err
		}
		if budget != nil {
			if budget.Add(-1) < 0 {
				return err
			}
		} else if policy.MaxAttempts > 0 && n >= policy.MaxAttempts {
			return err
		}
		if log != nil {
			log.Warn("serialization conflict, retrying operation",
				zap.String("op", op), zap.Int("attempt", n), zap.Error(err))
		}
		if d := policy.backoffFor(n); d > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
