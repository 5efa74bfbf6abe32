// Package engine implements the transactional booking operations: login,
// create-customer, search, book, pay, list-reservations and cancel. Each
// operation returns a single status line whose exact wording is part of
// the external contract. Cross-row invariants (seat capacity, one
// reservation per day, non-negative balances, strictly increasing
// reservation IDs) are enforced by running every mutating operation inside
// one serializable transaction via the coordinator.
package engine

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"github.com/saasha05/FlightBookingSystem/internal/repository"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

// SearchCache caches assembled search results. A miss is (nil, nil).
type SearchCache interface {
	GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, key string, its []domain.Itinerary) error
}

// Producer publishes reservation events after commit.
type Producer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type Engine struct {
	pool          *pgxpool.Pool
	policy        txn.RetryPolicy
	budget        atomic.Int32
	initialBudget int32
	cache         SearchCache
	producer      Producer
	eventsTopic   string
	log           *zap.Logger
}

type Option func(*Engine)

func WithSearchCache(c SearchCache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithProducer(p Producer, topic string) Option {
	return func(e *Engine) {
		e.producer = p
		e.eventsTopic = topic
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an engine over the pool. createRetryBudget is the process-wide
// number of deadlock retries shared by all create-customer calls. Cache and
// producer are optional collaborators; absent, searches always hit the
// store and no events are published.
func New(pool *pgxpool.Pool, policy txn.RetryPolicy, createRetryBudget int, opts ...Option) *Engine {
	e := &Engine{
		pool:          pool,
		policy:        policy,
		initialBudget: int32(createRetryBudget),
		log:           zap.NewNop(),
	}
	e.budget.Store(e.initialBudget)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSession pins a connection from the pool to a fresh session. The
// caller owns the session and must Close it to release the connection.
func (e *Engine) NewSession(ctx context.Context) (*session.Session, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	coord := txn.NewPGCoordinator(conn, e.policy, &e.budget, e.log)
	return session.New(coord), nil
}

// Reset clears reservations and users and restores the shared create-user
// retry budget. The flight catalog is untouched.
func (e *Engine) Reset(ctx context.Context) error {
	if err := repository.Reset(ctx, e.pool); err != nil {
		return err
	}
	e.budget.Store(e.initialBudget)
	return nil
}

// finish runs the dangling-transaction check after an operation. A non-nil
// error here is fatal: the connection is still inside a transaction and
// the session must not issue further operations.
func (e *Engine) finish(ctx context.Context, s *session.Session, msg string) (string, error) {
	if err := s.Txn().VerifyIdle(ctx); err != nil {
		e.log.Error("dangling transaction after operation",
			zap.String("session", s.ID().String()), zap.Error(err))
		return msg, err
	}
	return msg, nil
}

// publish emits a reservation event, fire and forget. Publish failures are
// logged and never change an operation's outcome.
func (e *Engine) publish(ctx context.Context, s *session.Session, event kafka.ReservationEvent) {
	if e.producer == nil || e.eventsTopic == "" {
		return
	}
	event.SessionID = s.ID().String()
	if err := e.producer.Publish(ctx, e.eventsTopic, event.Username, event); err != nil {
		e.log.Warn("failed to publish reservation event",
			zap.String("type", event.Type), zap.Error(err))
	}
}
