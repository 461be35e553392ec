package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/peerauto/car-rental-api/internal/model"
)

// ErrListingNotFound is returned when a listing id does not resolve
// to a row. Handlers should translate this into an HTTP 404.
var ErrListingNotFound = errors.New("listing not found")

// ListingRepo provides CRUD and moderation operations for listings.
// Moderation state lives in the status column; a listing is publicly
// visible only while status = 'approved'.
type ListingRepo struct{ db *sql.DB }

func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning listings and bookings.
func (r *ListingRepo) DB() *sql.DB { return r.db }

const listingCols = `id, owner_id, brand, model, year, price_per_day_cents,
	description, location, image_url, status, is_available, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanListing(s rowScanner, l *model.Listing) error {
	return s.Scan(
		&l.ID, &l.OwnerID, &l.Brand, &l.Model, &l.Year, &l.PricePerDayCents,
		&l.Description, &l.Location, &l.ImageURL, &l.Status, &l.IsAvailable,
		&l.CreatedAt, &l.UpdatedAt,
	)
}

// Create inserts a new listing. Status always starts as 'pending'
// regardless of caller input; only moderation can change it. The
// generated ID is written back onto the provided listing.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	const q = `INSERT INTO listings
		(owner_id, brand, model, year, price_per_day_cents, description, location, image_url, status, is_available)
		VALUES (?,?,?,?,?,?,?,?,'pending',?)`
	res, err := r.db.ExecContext(ctx, q,
		l.OwnerID, l.Brand, l.Model, l.Year, l.PricePerDayCents,
		l.Description, l.Location, l.ImageURL, l.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	l.Status = model.ListingPending
	// Read the row back so timestamps reflect database defaults.
	row := r.db.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE id = ?`, l.ID)
	return scanListing(row, l)
}

// GetByID returns a single listing or ErrListingNotFound.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (model.Listing, error) {
	var l model.Listing
	row := r.db.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, err
	}
	return l, nil
}

// GetForUpdateTx loads a listing inside tx with a row lock. Booking
// creation locks the listing so concurrent overlap checks on the same
// vehicle serialize; without the lock two racing requests could both
// pass the check and both insert.
func (r *ListingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Listing, error) {
	var l model.Listing
	row := tx.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE id = ? FOR UPDATE`, id)
	if err := scanListing(row, &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, err
	}
	return l, nil
}

// Update persists the owner-editable attributes of a listing. The
// moderation status and owner are deliberately not touched here.
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	const q = `UPDATE listings
		SET brand = ?, model = ?, year = ?, price_per_day_cents = ?,
		    description = ?, location = ?, image_url = ?, is_available = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		l.Brand, l.Model, l.Year, l.PricePerDayCents,
		l.Description, l.Location, l.ImageURL, l.IsAvailable, l.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-op update, so confirm absence.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a listing. Dependent ratings, bookings and
// favorites are removed by ON DELETE CASCADE foreign keys.
func (r *ListingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

// SetStatus overwrites the moderation status. Transitions are
// unrestricted: an already-rejected listing can be approved later.
func (r *ListingRepo) SetStatus(ctx context.Context, id uint64, status string) (model.Listing, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE listings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return model.Listing{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "missing" from "already in that status".
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return model.Listing{}, getErr
		}
	}
	return r.GetByID(ctx, id)
}

// ListByOwner returns all listings created by the given user, newest
// first, regardless of moderation status.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE owner_id = ? ORDER BY created_at DESC`
	return r.queryListings(ctx, q, ownerID)
}

// ListByStatus returns all listings in the given moderation state,
// oldest first so moderators see the longest-waiting submissions at
// the top.
func (r *ListingRepo) ListByStatus(ctx context.Context, status string) ([]model.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM listings WHERE status = ? ORDER BY created_at ASC`
	return r.queryListings(ctx, q, status)
}

func (r *ListingRepo) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Listing, 0)
	for rows.Next() {
		var l model.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
