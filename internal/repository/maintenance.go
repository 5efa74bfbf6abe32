package repository

import "context"

// Reset deletes all reservations and users and restarts reservation
// numbering. The flights table is externally seeded and left untouched.
func Reset(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, `TRUNCATE reservations RESTART IDENTITY`); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM users`)
	return err
}
