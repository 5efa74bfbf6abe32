package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
)

// ReservationRepository accesses the reservations table. Rows are never
// physically deleted by business operations, so identity-assigned IDs stay
// strictly increasing for the lifetime of the table.
type ReservationRepository interface {
	All(ctx context.Context) ([]domain.Reservation, error)
	ListByUser(ctx context.Context, username string) ([]domain.Reservation, error)
	ExistsForUserOnDay(ctx context.Context, username string, day int) (bool, error)
	// Create inserts the reservation and fills in the assigned ID.
	Create(ctx context.Context, res *domain.Reservation) error
	// ByIDForUser returns (nil, nil) when the reservation does not exist or
	// belongs to another user.
	ByIDForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error)
	// UnpaidByIDForUser is ByIDForUser restricted to paid = false.
	UnpaidByIDForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error)
	MarkPaid(ctx context.Context, id int64, username string) error
	MarkCancelled(ctx context.Context, id int64, username string) error
}

type PGReservationRepository struct {
	q Querier
}

func NewReservationRepository(q Querier) ReservationRepository {
	return &PGReservationRepository{q: q}
}

const reservationColumns = `id, paid, cancelled, username, itinerary_idx, price, day_of_month`

func (r *PGReservationRepository) All(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+reservationColumns+` FROM reservations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, username string) ([]domain.Reservation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE username = $1 ORDER BY id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *PGReservationRepository) ExistsForUserOnDay(ctx context.Context, username string, day int) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE username = $1 AND day_of_month = $2)`,
		username, day).Scan(&exists)
	return exists, err
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO reservations (paid, cancelled, username, itinerary_idx, price, day_of_month)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		res.Paid, res.Cancelled, res.Username, res.ItineraryIdx, res.Price, res.Day).Scan(&res.ID)
}

func (r *PGReservationRepository) ByIDForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	return r.one(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 AND username = $2`, id, username)
}

func (r *PGReservationRepository) UnpaidByIDForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	return r.one(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 AND username = $2 AND NOT paid`, id, username)
}

func (r *PGReservationRepository) MarkPaid(ctx context.Context, id int64, username string) error {
	_, err := r.q.Exec(ctx, `UPDATE reservations SET paid = true WHERE id = $1 AND username = $2`, id, username)
	return err
}

func (r *PGReservationRepository) MarkCancelled(ctx context.Context, id int64, username string) error {
	_, err := r.q.Exec(ctx, `UPDATE reservations SET cancelled = true WHERE id = $1 AND username = $2`, id, username)
	return err
}

func (r *PGReservationRepository) one(ctx context.Context, sql string, args ...any) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.q.QueryRow(ctx, sql, args...).Scan(
		&res.ID, &res.Paid, &res.Cancelled, &res.Username, &res.ItineraryIdx, &res.Price, &res.Day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.Paid, &res.Cancelled, &res.Username, &res.ItineraryIdx, &res.Price, &res.Day); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
