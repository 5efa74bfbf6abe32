// Package session holds per-client state: the authenticated user and the
// itinerary cache produced by the most recent search. A session owns its
// coordinator (and through it one pinned connection); operations on a
// session never run concurrently.
package session

import (
	"github.com/google/uuid"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
)

type Session struct {
	id      uuid.UUID
	coord   txn.Coordinator
	user    string
	cache   []domain.Itinerary
	version int
}

func New(coord txn.Coordinator) *Session {
	return &Session{id: uuid.New(), coord: coord}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) Txn() txn.Coordinator { return s.coord }

// User returns the authenticated username, or "" before login.
func (s *Session) User() string { return s.user }

// Authenticate sets the session user exactly once. It reports false if a
// user is already logged in; there is no logout.
func (s *Session) Authenticate(username string) bool {
	if s.user != "" {
		return false
	}
	s.user = username
	return true
}

// Itinerary returns the cached itinerary at index i. Indices are positions
// in the most recent search's result and are invalidated by the next
// search.
func (s *Session) Itinerary(i int) (domain.Itinerary, bool) {
	if i < 0 || i >= len(s.cache) {
		return domain.Itinerary{}, false
	}
	return s.cache[i], true
}

// ReplaceItineraries swaps the cache wholesale and returns the new cache
// version. Any index handed out before this call is stale.
func (s *Session) ReplaceItineraries(its []domain.Itinerary) int {
	s.cache = its
	s.version++
	return s.version
}

func (s *Session) Version() int { return s.version }

func (s *Session) Close() {
	if s.coord != nil {
		s.coord.Close()
	}
}
