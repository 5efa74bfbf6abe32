package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saasha05/FlightBookingSystem/internal/domain"
	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

var (
	errCapacity = errors.New("flight is full")
	errSameDay  = errors.New("reservation already held on that day")
)

// Book reserves the itinerary at the given index of the session's most
// recent search. Inside one serializable transaction it checks seat
// capacity for every leg, enforces the one-reservation-per-day rule and
// inserts the reservation row; the assigned ID is 1-based and strictly
// increasing across the lifetime of the system.
//
// Occupancy counts every stored reservation whose snapshotted itinerary
// index maps, through the current session cache, to an itinerary
// containing the leg. Cancelled and unpaid reservations count too; indices
// outside the current cache are skipped.
func (e *Engine) Book(ctx context.Context, s *session.Session, itineraryID int) (string, error) {
	if s.User() == "" {
		return "Cannot book reservations, not logged in\n", nil
	}
	it, ok := s.Itinerary(itineraryID)
	if !ok {
		return fmt.Sprintf("No such itinerary %d\n", itineraryID), nil
	}

	var reservationID int64
	err := s.Txn().Serializable(ctx, "book", func(ctx context.Context, st txn.Store) error {
		all, err := st.Reservations().All(ctx)
		if err != nil {
			return err
		}
		for _, leg := range it.Flights {
			occupancy := 0
			for _, r := range all {
				if mapped, ok := s.Itinerary(r.ItineraryIdx); ok && mapped.Contains(leg.ID) {
					occupancy++
				}
			}
			if occupancy >= leg.Capacity {
				return errCapacity
			}
		}

		held, err := st.Reservations().ExistsForUserOnDay(ctx, s.User(), it.Day)
		if err != nil {
			return err
		}
		if held {
			return errSameDay
		}

		res := &domain.Reservation{
			Username:     s.User(),
			ItineraryIdx: itineraryID,
			Price:        it.Price,
			Day:          it.Day,
		}
		if err := st.Reservations().Create(ctx, res); err != nil {
			return err
		}
		reservationID = res.ID
		return nil
	})
	switch {
	case err == nil:
		e.publish(ctx, s, kafka.ReservationEvent{
			Type:          kafka.EventReservationBooked,
			Username:      s.User(),
			ReservationID: reservationID,
			Price:         it.Price,
			Day:           it.Day,
		})
		return e.finish(ctx, s, fmt.Sprintf("Booked flight(s), reservation ID: %d\n", reservationID))
	case errors.Is(err, errSameDay):
		return e.finish(ctx, s, "You cannot book two flights in the same day\n")
	case errors.Is(err, errCapacity):
		return e.finish(ctx, s, "Booking failed\n")
	default:
		e.log.Error("booking failed", zap.String("username", s.User()), zap.Error(err))
		return e.finish(ctx, s, "Booking failed\n")
	}
}

var errStaleItinerary = errors.New("stored itinerary index outside current cache")

// ListReservations prints the current user's reservations. Flight details
// are resolved through the session's itinerary cache via each
// reservation's snapshotted index; an index the current cache cannot map
// aborts the listing.
func (e *Engine) ListReservations(ctx context.Context, s *session.Session) (string, error) {
	if s.User() == "" {
		return "Cannot view reservations, not logged in\n", nil
	}

	var list []domain.Reservation
	err := s.Txn().Serializable(ctx, "reservations", func(ctx context.Context, st txn.Store) error {
		var err error
		list, err = st.Reservations().ListByUser(ctx, s.User())
		return err
	})
	if err != nil {
		e.log.Error("listing reservations failed", zap.String("username", s.User()), zap.Error(err))
		return e.finish(ctx, s, "Failed to retrieve reservations\n")
	}
	if len(list) == 0 {
		return e.finish(ctx, s, "No reservations found\n")
	}

	out, err := formatReservations(s, list)
	if err != nil {
		return e.finish(ctx, s, "Failed to retrieve reservations\n")
	}
	return e.finish(ctx, s, out)
}

func formatReservations(s *session.Session, list []domain.Reservation) (string, error) {
	var sb strings.Builder
	for _, r := range list {
		it, ok := s.Itinerary(r.ItineraryIdx)
		if !ok {
			return "", errStaleItinerary
		}
		fmt.Fprintf(&sb, "Reservation %d paid: %t:\n", r.ID, r.Paid)
		for _, f := range it.Flights {
			sb.WriteString(f.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
