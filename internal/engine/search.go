package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

// Search finds up to maxResults itineraries from origin to dest on the
// given day of month and replaces the session's itinerary cache with the
// result. Direct flights are fetched first; unless directOnly is set, the
// remaining slots are filled with same-day two-hop connections. The final
// order is total duration ascending, stable across the two sub-sequences.
//
// maxResults <= 0 is handled locally: no store round-trip, previous cache
// left intact.
func (e *Engine) Search(ctx context.Context, s *session.Session, origin, dest string, directOnly bool, day, maxResults int) (string, error) {
	if maxResults <= 0 {
		return "No flights match your selection\n", nil
	}

	key := fmt.Sprintf("search:%s:%s:%d:%t:%d", origin, dest, day, directOnly, maxResults)
	if e.cache != nil {
		if its, err := e.cache.GetItineraries(ctx, key); err == nil && its != nil {
			s.ReplaceItineraries(its)
			return e.finish(ctx, s, formatItineraries(its))
		}
	}

	var its []domain.Itinerary
	err := s.Txn().Serializable(ctx, "search", func(ctx context.Context, st txn.Store) error {
		its = its[:0]
		direct, err := st.Flights().Direct(ctx, origin, dest, day, maxResults)
		if err != nil {
			return err
		}
		for _, f := range direct {
			its = append(its, domain.NewItinerary(f))
		}
		if !directOnly && len(direct) < maxResults {
			pairs, err := st.Flights().Connecting(ctx, origin, dest, day, maxResults-len(direct))
			if err != nil {
				return err
			}
			for _, p := range pairs {
				its = append(its, domain.NewItinerary(p[0], p[1]))
			}
		}
		return nil
	})
	if err != nil {
		e.log.Error("search failed",
			zap.String("origin", origin), zap.String("dest", dest), zap.Error(err))
		return e.finish(ctx, s, "Failed to search\n")
	}

	sort.SliceStable(its, func(i, j int) bool { return its[i].Duration < its[j].Duration })
	s.ReplaceItineraries(its)
	if len(its) == 0 {
		return e.finish(ctx, s, "No flights match your selection\n")
	}
	if e.cache != nil {
		if err := e.cache.SetItineraries(ctx, key, its); err != nil {
			e.log.Warn("failed to cache search result", zap.Error(err))
		}
	}
	return e.finish(ctx, s, formatItineraries(its))
}

func formatItineraries(its []domain.Itinerary) string {
	var sb strings.Builder
	for i, it := range its {
		fmt.Fprintf(&sb, "Itinerary %d: %d flight(s), %d minutes\n", i, len(it.Flights), it.Duration)
		for _, f := range it.Flights {
			sb.WriteString(f.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
