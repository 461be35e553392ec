package repository

import (
	"context"
	"database/sql"

	"github.com/peerauto/car-rental-api/internal/model"
)

// RatingRepo manages per-listing ratings. The ratings table carries
// UNIQUE(listing_id, user_id), so a rater can never hold two rows on
// the same listing: resubmitting routes through the duplicate-key
// branch and rewrites the existing row in place, keeping its id and
// position.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Upsert inserts the rater's score for a listing or, when the rater
// already scored it, replaces score and comment on the existing row.
// Concurrent submissions by the same rater resolve last-write-wins at
// the storage layer; no application lock is needed.
func (r *RatingRepo) Upsert(ctx context.Context, listingID, userID uint64, score int, comment string) error {
	const q = `INSERT INTO ratings (listing_id, user_id, score, comment)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE score = VALUES(score), comment = VALUES(comment), updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, q, listingID, userID, score, comment)
	return err
}

// ListByListing returns all ratings for a listing in insertion order.
// Replaced ratings keep their original position because the upsert
// never deletes the row.
func (r *RatingRepo) ListByListing(ctx context.Context, listingID uint64) ([]model.Rating, error) {
	const q = `SELECT id, listing_id, user_id, score, comment, created_at, updated_at
		FROM ratings WHERE listing_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Rating, 0)
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.ListingID, &rt.UserID, &rt.Score, &rt.Comment, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
