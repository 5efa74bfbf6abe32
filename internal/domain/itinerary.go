package domain

// Itinerary is one or two flights forming a same-day trip. It exists only
// inside a session between a search and subsequent bookings; it is never
// persisted.
type Itinerary struct {
	Flights  []Flight `json:"flights"`
	Day      int      `json:"day_of_month"`
	Price    int      `json:"price"`
	Duration int      `json:"duration"`
}

// NewItinerary builds an itinerary from one or two legs. The day is taken
// from the first leg; price and duration aggregate over all legs.
func NewItinerary(legs ...Flight) Itinerary {
	it := Itinerary{Flights: legs, Day: legs[0].Day}
	for _, f := range legs {
		it.Price += f.Price
		it.Duration += f.Duration
	}
	return it
}

// Contains reports whether the itinerary includes the given flight.
func (it Itinerary) Contains(fid int64) bool {
	for _, f := range it.Flights {
		if f.ID == fid {
			return true
		}
	}
	return false
}
