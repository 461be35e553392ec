// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully created.
// It carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
    BookingID       uint64 `json:"booking_id"`
    ListingID       uint64 `json:"listing_id"`
    RenterID        uint64 `json:"renter_id"`
    Vehicle         string `json:"vehicle"` // "<brand> <model>"
    Location        string `json:"location"`
    StartDate       string `json:"start_date"` // YYYY-MM-DD
    EndDate         string `json:"end_date"`   // YYYY-MM-DD
    TotalPriceCents uint32 `json:"total_price_cents"`
    ConfirmedAt     string `json:"confirmed_at"`
}
