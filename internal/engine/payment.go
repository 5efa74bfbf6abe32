package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

var (
	errNoUnpaidReservation = errors.New("no unpaid reservation")
	errInsufficientFunds   = errors.New("insufficient funds")
	errNotCancellable      = errors.New("reservation missing or already cancelled")
)

// Pay settles an unpaid reservation of the current user: the balance is
// debited and the paid flag flipped in one serializable transaction. A
// cancelled-but-unpaid reservation stays payable; there is no refund path
// for that case. Balances never go negative.
func (e *Engine) Pay(ctx context.Context, s *session.Session, reservationID int64) (string, error) {
	if s.User() == "" {
		return "Cannot pay, not logged in\n", nil
	}

	var price, balance, newBalance int
	err := s.Txn().Serializable(ctx, "pay", func(ctx context.Context, st txn.Store) error {
		res, err := st.Reservations().UnpaidByIDForUser(ctx, reservationID, s.User())
		if err != nil {
			return err
		}
		if res == nil {
			return errNoUnpaidReservation
		}
		price = res.Price

		balance, err = st.Users().Balance(ctx, s.User())
		if err != nil {
			return err
		}
		if balance-price < 0 {
			return errInsufficientFunds
		}
		newBalance = balance - price

		if err := st.Users().UpdateBalance(ctx, s.User(), newBalance); err != nil {
			return err
		}
		return st.Reservations().MarkPaid(ctx, reservationID, s.User())
	})
	switch {
	case err == nil:
		e.publish(ctx, s, kafka.ReservationEvent{
			Type:          kafka.EventReservationPaid,
			Username:      s.User(),
			ReservationID: reservationID,
			Price:         price,
			Balance:       newBalance,
		})
		return e.finish(ctx, s, fmt.Sprintf("Paid reservation: %d remaining balance: %d\n", reservationID, newBalance))
	case errors.Is(err, errNoUnpaidReservation):
		return e.finish(ctx, s, fmt.Sprintf("Cannot find unpaid reservation %d under user: %s\n", reservationID, s.User()))
	case errors.Is(err, errInsufficientFunds):
		return e.finish(ctx, s, fmt.Sprintf("User has only %d in account but itinerary costs %d\n", balance, price))
	default:
		e.log.Error("payment failed", zap.Int64("reservation_id", reservationID), zap.Error(err))
		return e.finish(ctx, s, fmt.Sprintf("Failed to pay for reservation %d\n", reservationID))
	}
}

// Cancel marks a reservation cancelled and credits its price back to the
// user. The not-already-cancelled pre-check and the refund share one
// serializable transaction, so a concurrent double cancel cannot refund
// twice. The paid flag and the reservation ID are left as they are.
func (e *Engine) Cancel(ctx context.Context, s *session.Session, reservationID int64) (string, error) {
	if s.User() == "" {
		return "Cannot cancel reservations, not logged in\n", nil
	}

	var price int
	err := s.Txn().Serializable(ctx, "cancel", func(ctx context.Context, st txn.Store) error {
		res, err := st.Reservations().ByIDForUser(ctx, reservationID, s.User())
		if err != nil {
			return err
		}
		if res == nil || res.Cancelled {
			return errNotCancellable
		}
		price = res.Price

		balance, err := st.Users().Balance(ctx, s.User())
		if err != nil {
			return err
		}
		if err := st.Users().UpdateBalance(ctx, s.User(), balance+res.Price); err != nil {
			return err
		}
		return st.Reservations().MarkCancelled(ctx, reservationID, s.User())
	})
	switch {
	case err == nil:
		e.publish(ctx, s, kafka.ReservationEvent{
			Type:          kafka.EventReservationCancelled,
			Username:      s.User(),
			ReservationID: reservationID,
			Price:         price,
		})
		return e.finish(ctx, s, fmt.Sprintf("Canceled reservation %d\n", reservationID))
	case errors.Is(err, errNotCancellable):
		return e.finish(ctx, s, fmt.Sprintf("Failed to cancel reservation %d\n", reservationID))
	default:
		e.log.Error("cancellation failed", zap.Int64("reservation_id", reservationID), zap.Error(err))
		return e.finish(ctx, s, fmt.Sprintf("Failed to cancel reservation %d\n", reservationID))
	}
}
