package model

import "testing"

func TestAverageRating(t *testing.T) {
	ratings := []Rating{{Score: 5}, {Score: 4}, {Score: 3}}
	if got := AverageRating(ratings); got != 4.0 {
		t.Errorf("AverageRating = %v, want 4.0", got)
	}
}

func TestAverageRatingEmpty(t *testing.T) {
	if got := AverageRating(nil); got != 0 {
		t.Errorf("AverageRating(nil) = %v, want 0", got)
	}
}

func TestAverageRatingSingle(t *testing.T) {
	if got := AverageRating([]Rating{{Score: 2}}); got != 2.0 {
		t.Errorf("AverageRating = %v, want 2.0", got)
	}
}

func TestValidScore(t *testing.T) {
	for s := MinScore; s <= MaxScore; s++ {
		if !ValidScore(s) {
			t.Errorf("ValidScore(%d) = false, want true", s)
		}
	}
	for _, s := range []int{0, -1, 6, 100} {
		if ValidScore(s) {
			t.Errorf("ValidScore(%d) = true, want false", s)
		}
	}
}

func TestValidListingStatus(t *testing.T) {
	for _, s := range []string{ListingPending, ListingApproved, ListingRejected} {
		if !ValidListingStatus(s) {
			t.Errorf("ValidListingStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "PENDING", "live", "deleted"} {
		if ValidListingStatus(s) {
			t.Errorf("ValidListingStatus(%q) = true, want false", s)
		}
	}
}
