package model

import (
    "math"
    "time"
)

// Booking status values stored in bookings.status.  New bookings are
// written in BookingConfirmed directly; there is no separate approval
// step.  Only pending and confirmed bookings block a listing's dates.
const (
    BookingPending   = "pending"
    BookingConfirmed = "confirmed"
    BookingCancelled = "cancelled"
    BookingCompleted = "completed"
)

// ValidBookingStatus reports whether s is one of the four booking
// states.  Admin status overrides must pass this check but are
// otherwise unrestricted: any state may be set from any state.
func ValidBookingStatus(s string) bool {
    switch s {
    case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
        return true
    }
    return false
}

// BlocksDates reports whether a booking in the given status counts
// against the listing's availability.  Cancelled and completed
// bookings release their date range entirely.
func BlocksDates(status string) bool {
    return status == BookingPending || status == BookingConfirmed
}

// Cancellable reports whether the renter may still cancel a booking
// in the given status.
func Cancellable(status string) bool {
    return status == BookingPending || status == BookingConfirmed
}

// Booking is a reservation of a listing for a date range, mirroring
// the `bookings` table.  StartDate and EndDate are calendar dates
// (stored as DATE, midnight UTC); the interval is closed on both
// ends, so two bookings sharing a single day overlap.
//
// Fields:
//  ID              – primary key identifier.
//  ListingID       – booked listing.
//  UserID          – renter.
//  StartDate       – first rental day (inclusive).
//  EndDate         – last rental day (inclusive).
//  TotalPriceCents – derived price, never caller-supplied.
//  Status          – booking state.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
    ID              uint64    // bookings.id
    ListingID       uint64    // bookings.listing_id
    UserID          uint64    // bookings.user_id
    StartDate       time.Time // bookings.start_date
    EndDate         time.Time // bookings.end_date
    TotalPriceCents uint32    // bookings.total_price_cents
    Status          string    // bookings.status
    CreatedAt       time.Time // bookings.created_at
    UpdatedAt       time.Time // bookings.updated_at
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day.  The comparison is
// inclusive on both bounds: a range starting the day another ends
// still overlaps it.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// RentalDays returns the billed duration for a [start, end] range:
// the difference between the two dates rounded up to whole days.  A
// range spanning any fraction of a day beyond whole days is billed
// for the extra day.  Callers must ensure start <= end.
func RentalDays(start, end time.Time) int {
    return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// TotalPriceCents computes the derived booking price from its date
// range and the listing's daily price.
func TotalPriceCents(start, end time.Time, pricePerDayCents uint32) uint32 {
    return uint32(RentalDays(start, end)) * pricePerDayCents
}
