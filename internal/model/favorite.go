package model

import "time"

// Favorite links a user to a listing they bookmarked.  The composite
// primary key (user_id, listing_id) keeps the set duplicate-free.
type Favorite struct {
    UserID    uint64    // favorites.user_id
    ListingID uint64    // favorites.listing_id
    CreatedAt time.Time // favorites.created_at
}
