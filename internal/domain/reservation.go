package domain

// Reservation is a persisted booking. IDs are assigned by the store,
// 1-based and strictly increasing; they are never reused, even after
// cancellation. Paid and Cancelled are independent: cancelling keeps the
// historical paid state.
type Reservation struct {
	ID           int64
	Paid         bool
	Cancelled    bool
	Username     string
	ItineraryIdx int
	Price        int
	Day          int
}

// User is a persisted account. Balance is never negative; the payment
// engine rejects debits that would take it below zero.
type User struct {
	Username     string
	PasswordHash string
	Salt         string
	Balance      int
}
