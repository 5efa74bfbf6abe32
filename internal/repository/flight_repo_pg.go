package repository

import (
	"context"

	"github.com/saasha05/FlightBookingSystem/internal/domain"
)

// FlightRepository reads the immutable flight catalog.
type FlightRepository interface {
	// Direct returns up to limit non-canceled flights matching origin,
	// destination and day, ordered by duration then flight ID.
	Direct(ctx context.Context, origin, dest string, day, limit int) ([]domain.Flight, error)
	// Connecting returns up to limit same-day two-hop pairs where the first
	// leg's destination is the second leg's origin, ordered by combined
	// duration.
	Connecting(ctx context.Context, origin, dest string, day, limit int) ([][2]domain.Flight, error)
}

type PGFlightRepository struct {
	q Querier
}

func NewFlightRepository(q Querier) FlightRepository {
	return &PGFlightRepository{q: q}
}

func (r *PGFlightRepository) Direct(ctx context.Context, origin, dest string, day, limit int) ([]domain.Flight, error) {
	rows, err := r.q.Query(ctx, `
		SELECT fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price
		FROM flights
		WHERE origin_city = $1 AND dest_city = $2 AND day_of_month = $3 AND canceled = 0
		ORDER BY actual_time, fid
		LIMIT $4`, origin, dest, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.Day, &f.Carrier, &f.Number, &f.Origin, &f.Dest, &f.Duration, &f.Capacity, &f.Price); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Connecting(ctx context.Context, origin, dest string, day, limit int) ([][2]domain.Flight, error) {
	rows, err := r.q.Query(ctx, `
		SELECT f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time, f1.capacity, f1.price,
		       f2.fid, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time, f2.capacity, f2.price
		FROM flights f1
		JOIN flights f2 ON f2.origin_city = f1.dest_city AND f2.day_of_month = f1.day_of_month
		WHERE f1.origin_city = $1 AND f2.dest_city = $2 AND f1.day_of_month = $3
		  AND f1.canceled = 0 AND f2.canceled = 0
		ORDER BY f1.actual_time + f2.actual_time, f1.fid, f2.fid
		LIMIT $4`, origin, dest, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make([][2]domain.Flight, 0)
	for rows.Next() {
		var a, b domain.Flight
		if err := rows.Scan(
			&a.ID, &a.Day, &a.Carrier, &a.Number, &a.Origin, &a.Dest, &a.Duration, &a.Capacity, &a.Price,
			&b.ID, &b.Carrier, &b.Number, &b.Origin, &b.Dest, &b.Duration, &b.Capacity, &b.Price,
		); err != nil {
			return nil, err
		}
		b.Day = a.Day
		pairs = append(pairs, [2]domain.Flight{a, b})
	}
	return pairs, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
