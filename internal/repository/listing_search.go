package repository

import (
	"context"
	"strings"

	"github.com/peerauto/car-rental-api/internal/model"
)

// ListingSearchQuery defines filters & pagination for public search.
// Brand, Model and Location match exactly (case-insensitive); Query
// is a free-text substring matched against brand, model, description
// and location. Price bounds are inclusive and in cents; zero means
// unset. Year filters on the exact model year when non-zero.
type ListingSearchQuery struct {
	Brand         string
	Model         string
	Location      string
	Year          int
	MinPriceCents int64
	MaxPriceCents int64
	Query         string
	Page          int
	PageSize      int
}

// PublicListingRow is the sanitized shape returned to guests. Price
// is derived from cents for display.
type PublicListingRow struct {
	ID               uint64  `json:"id"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	Year             uint16  `json:"year"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	PricePerDay      float64 `json:"price_per_day"`
	Description      string  `json:"description"`
	Location         string  `json:"location"`
	ImageURL         string  `json:"image_url"`
	IsAvailable      bool    `json:"is_available"`
	AverageRating    float64 `json:"average_rating"`
	RatingCount      int64   `json:"rating_count"`
}

// Search returns approved listings matching the query plus the total
// count before pagination. Listings in pending or rejected state are
// never returned no matter what filters are supplied; the status
// condition is fixed in the SQL, not caller-controlled.
func (r *ListingRepo) Search(ctx context.Context, q ListingSearchQuery) ([]PublicListingRow, int64, error) {
	where := []string{"l.status = ?"}
	args := []any{model.ListingApproved}

	if q.Brand != "" {
		where = append(where, "LOWER(l.brand) = ?")
		args = append(args, strings.ToLower(q.Brand))
	}
	if q.Model != "" {
		where = append(where, "LOWER(l.model) = ?")
		args = append(args, strings.ToLower(q.Model))
	}
	if q.Location != "" {
		where = append(where, "LOWER(l.location) = ?")
		args = append(args, strings.ToLower(q.Location))
	}
	if q.Year > 0 {
		where = append(where, "l.year = ?")
		args = append(args, q.Year)
	}
	if q.MinPriceCents > 0 {
		where = append(where, "l.price_per_day_cents >= ?")
		args = append(args, q.MinPriceCents)
	}
	if q.MaxPriceCents > 0 {
		where = append(where, "l.price_per_day_cents <= ?")
		args = append(args, q.MaxPriceCents)
	}
	if q.Query != "" {
		needle := "%" + strings.ToLower(q.Query) + "%"
		where = append(where, `(LOWER(l.brand) LIKE ? OR LOWER(l.model) LIKE ? OR LOWER(l.description) LIKE ? OR LOWER(l.location) LIKE ?)`)
		args = append(args, needle, needle, needle, needle)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*) FROM listings l WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			l.id,
			l.brand,
			l.model,
			l.year,
			l.price_per_day_cents,
			l.description,
			l.location,
			l.image_url,
			l.is_available,
			COALESCE(AVG(rt.score), 0) AS avg_rating,
			COUNT(rt.id)               AS rating_count
		FROM listings l
		LEFT JOIN ratings rt ON rt.listing_id = l.id
		WHERE ` + cond + `
		GROUP BY l.id
		ORDER BY l.created_at DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicListingRow, 0, limit)
	for rows.Next() {
		var d PublicListingRow
		if err := rows.Scan(
			&d.ID,
			&d.Brand,
			&d.Model,
			&d.Year,
			&d.PricePerDayCents,
			&d.Description,
			&d.Location,
			&d.ImageURL,
			&d.IsAvailable,
			&d.AverageRating,
			&d.RatingCount,
		); err != nil {
			return nil, 0, err
		}
		d.PricePerDay = float64(d.PricePerDayCents) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
