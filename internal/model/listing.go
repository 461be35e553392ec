package model

import "time"

// Listing status values stored in listings.status.  A listing starts
// in ListingPending when created by its owner and only becomes
// visible in public search after an admin approves it.  A rejected
// listing may later be approved; moderation does not restrict which
// state a transition starts from.
const (
    ListingPending  = "pending"
    ListingApproved = "approved"
    ListingRejected = "rejected"
)

// ValidListingStatus reports whether s is one of the three
// moderation states.
func ValidListingStatus(s string) bool {
    switch s {
    case ListingPending, ListingApproved, ListingRejected:
        return true
    }
    return false
}

// Listing represents a vehicle offered for rent, mirroring the
// `listings` table.  The owner is referenced by id only.  IsAvailable
// is an owner-controlled hint and is independent of booking-derived
// availability; it does not block bookings.
//
// Fields:
//  ID               – primary key identifier.
//  OwnerID          – user who created the listing.
//  Brand            – vehicle brand.
//  Model            – vehicle model.
//  Year             – model year.
//  PricePerDayCents – daily rental price in cents.
//  Description      – free-text description.
//  Location         – city or area where the vehicle is offered.
//  ImageURL         – reference to the vehicle image.
//  Status           – moderation state (pending, approved, rejected).
//  IsAvailable      – owner hint, not enforced by the booking engine.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Listing struct {
    ID               uint64    // listings.id
    OwnerID          uint64    // listings.owner_id
    Brand            string    // listings.brand
    Model            string    // listings.model
    Year             uint16    // listings.year
    PricePerDayCents uint32    // listings.price_per_day_cents
    Description      string    // listings.description
    Location         string    // listings.location
    ImageURL         string    // listings.image_url
    Status           string    // listings.status
    IsAvailable      bool      // listings.is_available
    CreatedAt        time.Time // listings.created_at
    UpdatedAt        time.Time // listings.updated_at
}

// Rating is one user's score for a listing, mirroring the `ratings`
// table.  The UNIQUE(listing_id, user_id) key guarantees at most one
// row per rater; submitting again updates the existing row in place.
// Ratings live and die with their listing and are never deleted on
// their own.
//
// Fields:
//  ID        – primary key identifier.
//  ListingID – rated listing.
//  UserID    – rater.
//  Score     – integer score in [1,5].
//  Comment   – optional free-text comment.
//  CreatedAt – creation timestamp.
//  UpdatedAt – timestamp of the last resubmission.
type Rating struct {
    ID        uint64    // ratings.id
    ListingID uint64    // ratings.listing_id
    UserID    uint64    // ratings.user_id
    Score     uint8     // ratings.score
    Comment   string    // ratings.comment
    CreatedAt time.Time // ratings.created_at
    UpdatedAt time.Time // ratings.updated_at
}

// MinScore and MaxScore bound a rating score.
const (
    MinScore = 1
    MaxScore = 5
)

// ValidScore reports whether a submitted score is inside [1,5].
func ValidScore(score int) bool {
    return score >= MinScore && score <= MaxScore
}

// AverageRating returns the arithmetic mean of the given scores, or 0
// when the slice is empty.  The average is always derived from the
// current ratings and never persisted, so it cannot drift.
func AverageRating(ratings []Rating) float64 {
    if len(ratings) == 0 {
        return 0
    }
    sum := 0
    for _, r := range ratings {
        sum += int(r.Score)
    }
    return float64(sum) / float64(len(ratings))
}
