package domain

import "fmt"

// Flight mirrors a row of the externally seeded flights table. The engine
// never mutates flights.
type Flight struct {
	ID       int64  `json:"fid"`
	Day      int    `json:"day_of_month"`
	Carrier  string `json:"carrier_id"`
	Number   string `json:"flight_num"`
	Origin   string `json:"origin_city"`
	Dest     string `json:"dest_city"`
	Duration int    `json:"actual_time"`
	Capacity int    `json:"capacity"`
	Price    int    `json:"price"`
}

// String renders the flight display line used by search and reservation
// listings. The exact wording is part of the external contract.
func (f Flight) String() string {
	return fmt.Sprintf("ID: %d Day: %d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %d",
		f.ID, f.Day, f.Carrier, f.Number, f.Origin, f.Dest, f.Duration, f.Capacity, f.Price)
}
