package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrAlreadyFavorite is returned when the listing is already in the
// user's favorites.
var ErrAlreadyFavorite = errors.New("listing already in favorites")

// ErrNotFavorite is returned when removing a listing that is not in
// the user's favorites.
var ErrNotFavorite = errors.New("listing not in favorites")

// FavoriteRepo manages a user's set of bookmarked listings. The
// composite primary key (user_id, listing_id) keeps the set free of
// duplicates at the storage layer.
type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add inserts the pair, surfacing a duplicate insert as
// ErrAlreadyFavorite.
func (r *FavoriteRepo) Add(ctx context.Context, userID, listingID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, listing_id) VALUES (?,?)`, userID, listingID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

// Remove deletes the pair, surfacing a missing row as ErrNotFavorite.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, listingID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFavorite
	}
	return nil
}

// ListByUser returns the user's favorite listings as public rows,
// most recently added first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]PublicListingRow, error) {
	const q = `SELECT
			l.id, l.brand, l.model, l.year, l.price_per_day_cents,
			l.description, l.location, l.image_url, l.is_available,
			COALESCE(AVG(rt.score), 0), COUNT(rt.id)
		FROM favorites f
		JOIN listings l  ON l.id = f.listing_id
		LEFT JOIN ratings rt ON rt.listing_id = l.id
		WHERE f.user_id = ?
		GROUP BY l.id
		ORDER BY MAX(f.created_at) DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PublicListingRow, 0)
	for rows.Next() {
		var d PublicListingRow
		if err := rows.Scan(
			&d.ID, &d.Brand, &d.Model, &d.Year, &d.PricePerDayCents,
			&d.Description, &d.Location, &d.ImageURL, &d.IsAvailable,
			&d.AverageRating, &d.RatingCount,
		); err != nil {
			return nil, err
		}
		d.PricePerDay = float64(d.PricePerDayCents) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
