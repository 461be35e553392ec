package handler // handler defines http handlers

import (
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/peerauto/car-rental-api/internal/model"
)

// dateFmt is the wire format for booking dates.
const dateFmt = "2006-01-02"

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT claims decode numbers as float64, so several shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseDateRange parses and orders a start/end date pair supplied by the
// client.  The engine treats start <= end as a precondition, so the pair is
// rejected here before any availability logic runs.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
    start, err := time.ParseInLocation(dateFmt, startStr, time.UTC)
    if err != nil {
        return time.Time{}, time.Time{}, errors.New("invalid start_date, want YYYY-MM-DD")
    }
    end, err := time.ParseInLocation(dateFmt, endStr, time.UTC)
    if err != nil {
        return time.Time{}, time.Time{}, errors.New("invalid end_date, want YYYY-MM-DD")
    }
    if start.After(end) {
        return time.Time{}, time.Time{}, errors.New("start_date must not be after end_date")
    }
    return start, end, nil
}

// listingJSON shapes a listing for API responses.
func listingJSON(l model.Listing) echo.Map {
    return echo.Map{
        "id":                  l.ID,
        "owner_id":            l.OwnerID,
        "brand":               l.Brand,
        "model":               l.Model,
        "year":                l.Year,
        "price_per_day_cents": l.PricePerDayCents,
        "price_per_day":       float64(l.PricePerDayCents) / 100.0,
        "description":         l.Description,
        "location":            l.Location,
        "image_url":           l.ImageURL,
        "status":              l.Status,
        "is_available":        l.IsAvailable,
        "created_at":          l.CreatedAt.UTC().Format(time.RFC3339),
        "updated_at":          l.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// bookingJSON shapes a booking for API responses.  Dates go out as
// calendar days, not timestamps.
func bookingJSON(b model.Booking) echo.Map {
    return echo.Map{
        "id":                b.ID,
        "listing_id":        b.ListingID,
        "user_id":           b.UserID,
        "start_date":        b.StartDate.Format(dateFmt),
        "end_date":          b.EndDate.Format(dateFmt),
        "total_price_cents": b.TotalPriceCents,
        "total_price":       float64(b.TotalPriceCents) / 100.0,
        "status":            b.Status,
        "created_at":        b.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// ratingJSON shapes one rating entry.
func ratingJSON(r model.Rating) echo.Map {
    return echo.Map{
        "user_id":    r.UserID,
        "score":      r.Score,
        "comment":    r.Comment,
        "created_at": r.CreatedAt.UTC().Format(time.RFC3339),
        "updated_at": r.UpdatedAt.UTC().Format(time.RFC3339),
    }
}
