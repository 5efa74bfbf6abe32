package engine

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/repository"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
)

// memStore is an in-memory stand-in for the Postgres store. Multiple fake
// coordinators may share one memStore to model concurrent sessions.
type memStore struct {
	flights      []domain.Flight
	users        map[string]*domain.User
	reservations []domain.Reservation
	nextID       int64
}

func newMemStore(flights ...domain.Flight) *memStore {
	return &memStore{flights: flights, users: map[string]*domain.User{}, nextID: 1}
}

func (m *memStore) snapshot() *memStore {
	users := make(map[string]*domain.User, len(m.users))
	for k, v := range m.users {
		u := *v
		users[k] = &u
	}
	return &memStore{
		flights:      m.flights,
		users:        users,
		reservations: append([]domain.Reservation(nil), m.reservations...),
		nextID:       m.nextID,
	}
}

func (m *memStore) restore(snap *memStore) {
	m.users = snap.users
	m.reservations = snap.reservations
	m.nextID = snap.nextID
}

func (m *memStore) Flights() repository.FlightRepository           { return memCatalog{m} }
func (m *memStore) Users() repository.UserRepository               { return memUsers{m} }
func (m *memStore) Reservations() repository.ReservationRepository { return memReservations{m} }

type memCatalog struct{ m *memStore }

func (c memCatalog) Direct(_ context.Context, origin, dest string, day, limit int) ([]domain.Flight, error) {
	var out []domain.Flight
	for _, f := range c.m.flights {
		if f.Origin == origin && f.Dest == dest && f.Day == day {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration < out[j].Duration
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c memCatalog) Connecting(_ context.Context, origin, dest string, day, limit int) ([][2]domain.Flight, error) {
	var out [][2]domain.Flight
	for _, f1 := range c.m.flights {
		if f1.Origin != origin || f1.Day != day {
			continue
		}
		for _, f2 := range c.m.flights {
			if f2.Origin == f1.Dest && f2.Dest == dest && f2.Day == day {
				out = append(out, [2]domain.Flight{f1, f2})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := out[i][0].Duration + out[i][1].Duration
		dj := out[j][0].Duration + out[j][1].Duration
		if di != dj {
			return di < dj
		}
		if out[i][0].ID != out[j][0].ID {
			return out[i][0].ID < out[j][0].ID
		}
		return out[i][1].ID < out[j][1].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUsers struct{ m *memStore }

func (u memUsers) ByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := u.m.users[username]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (u memUsers) Create(_ context.Context, user *domain.User) error {
	if _, ok := u.m.users[user.Username]; ok {
		return &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	}
	cp := *user
	u.m.users[user.Username] = &cp
	return nil
}

func (u memUsers) Balance(_ context.Context, username string) (int, error) {
	user, ok := u.m.users[username]
	if !ok {
		return 0, &pgconn.PgError{Code: "02000", Message: "no data"}
	}
	return user.Balance, nil
}

func (u memUsers) UpdateBalance(_ context.Context, username string, balance int) error {
	if user, ok := u.m.users[username]; ok {
		user.Balance = balance
	}
	return nil
}

type memReservations struct{ m *memStore }

func (r memReservations) All(_ context.Context) ([]domain.Reservation, error) {
	return append([]domain.Reservation(nil), r.m.reservations...), nil
}

func (r memReservations) ListByUser(_ context.Context, username string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range r.m.reservations {
		if res.Username == username {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memReservations) ExistsForUserOnDay(_ context.Context, username string, day int) (bool, error) {
	for _, res := range r.m.reservations {
		if res.Username == username && res.Day == day {
			return true, nil
		}
	}
	return false, nil
}

func (r memReservations) Create(_ context.Context, res *domain.Reservation) error {
	res.ID = r.m.nextID
	r.m.nextID++
	r.m.reservations = append(r.m.reservations, *res)
	return nil
}

func (r memReservations) ByIDForUser(_ context.Context, id int64, username string) (*domain.Reservation, error) {
	for _, res := range r.m.reservations {
		if res.ID == id && res.Username == username {
			cp := res
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memReservations) UnpaidByIDForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	res, err := r.ByIDForUser(ctx, id, username)
	if err != nil || res == nil || res.Paid {
		return nil, err
	}
	return res, nil
}

func (r memReservations) MarkPaid(_ context.Context, id int64, username string) error {
	for i := range r.m.reservations {
		if r.m.reservations[i].ID == id && r.m.reservations[i].Username == username {
			r.m.reservations[i].Paid = true
		}
	}
	return nil
}

func (r memReservations) MarkCancelled(_ context.Context, id int64, username string) error {
	for i := range r.m.reservations {
		if r.m.reservations[i].ID == id && r.m.reservations[i].Username == username {
			r.m.reservations[i].Cancelled = true
		}
	}
	return nil
}

var _ txn.Store = (*memStore)(nil)

// fakeCoordinator implements txn.Coordinator over a memStore with real
// rollback semantics: every attempt runs against the live store and is
// restored from a snapshot on failure. Errors queued in failAfter are
// returned after an otherwise successful attempt, modeling a conflict
// detected at commit; the attempt's writes are rolled back, exactly like a
// serialization failure in Postgres.
type fakeCoordinator struct {
	store     *memStore
	policy    txn.RetryPolicy
	budget    atomic.Int32
	failAfter []error
	unclean   bool
	attempts  int
}

func newFakeCoordinator(store *memStore) *fakeCoordinator {
	c := &fakeCoordinator{store: store, policy: txn.RetryPolicy{MaxAttempts: 5}}
	c.budget.Store(3)
	return c
}

func (c *fakeCoordinator) attempt(ctx context.Context, fn func(ctx context.Context, s txn.Store) error) error {
	c.attempts++
	snap := c.store.snapshot()
	if err := fn(ctx, c.store); err != nil {
		c.store.restore(snap)
		return err
	}
	if len(c.failAfter) > 0 {
		injected := c.failAfter[0]
		c.failAfter = c.failAfter[1:]
		c.store.restore(snap)
		return injected
	}
	return nil
}

func (c *fakeCoordinator) Serializable(ctx context.Context, op string, fn func(ctx context.Context, s txn.Store) error) error {
	return txn.Retry(ctx, c.policy, nil, nil, op, func() error { return c.attempt(ctx, fn) })
}

func (c *fakeCoordinator) SerializableBudgeted(ctx context.Context, op string, fn func(ctx context.Context, s txn.Store) error) error {
	return txn.Retry(ctx, c.policy, &c.budget, nil, op, func() error { return c.attempt(ctx, fn) })
}

func (c *fakeCoordinator) VerifyIdle(context.Context) error {
	if c.unclean {
		return txn.ErrDanglingTransaction
	}
	return nil
}

func (c *fakeCoordinator) Close() {}

var _ txn.Coordinator = (*fakeCoordinator)(nil)

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}
}

// fakeSearchCache is an in-memory SearchCache.
type fakeSearchCache struct {
	entries map[string][]domain.Itinerary
	sets    int
}

func newFakeSearchCache() *fakeSearchCache {
	return &fakeSearchCache{entries: map[string][]domain.Itinerary{}}
}

func (c *fakeSearchCache) GetItineraries(_ context.Context, key string) ([]domain.Itinerary, error) {
	return c.entries[key], nil
}

func (c *fakeSearchCache) SetItineraries(_ context.Context, key string, its []domain.Itinerary) error {
	c.entries[key] = its
	c.sets++
	return nil
}
