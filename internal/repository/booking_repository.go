package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/peerauto/car-rental-api/internal/model"
)

// ErrBookingNotFound is returned when a booking id does not resolve
// to a row. Handlers should translate this into an HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// dateFmt is the wire and storage format for booking dates. Columns
// are DATE, so times never carry a clock component.
const dateFmt = "2006-01-02"

// BookingRepo provides booking persistence and the overlap check the
// availability engine is built on. Date ranges are closed intervals:
// a booking ending on a day blocks another starting that same day.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, listing_id, user_id, start_date, end_date, total_price_cents, status, created_at, updated_at`

// overlapSQL matches any booking on the listing that still blocks
// dates and shares at least one day with [start, end]. The <= / >=
// pair makes the boundary day count as a collision. excludeID lets a
// caller ignore one booking (no row has id 0, so 0 disables it).
const overlapSQL = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE listing_id = ?
	  AND status IN ('pending','confirmed')
	  AND id <> ?
	  AND start_date <= ?
	  AND end_date >= ?
)`

// OverlapExists runs the overlap test outside a transaction. Used by
// the read-only availability endpoint.
func (r *BookingRepo) OverlapExists(ctx context.Context, listingID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	var ex bool
	err := r.db.QueryRowContext(ctx, overlapSQL,
		listingID, excludeID, end.Format(dateFmt), start.Format(dateFmt)).Scan(&ex)
	return ex, err
}

// OverlapExistsTx runs the overlap test inside tx. Booking creation
// must call this after locking the listing row so that two racing
// requests for the same vehicle cannot both observe a free range.
func (r *BookingRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, listingID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	var ex bool
	err := tx.QueryRowContext(ctx, overlapSQL,
		listingID, excludeID, end.Format(dateFmt), start.Format(dateFmt)).Scan(&ex)
	return ex, err
}

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (listing_id, user_id, start_date, end_date, total_price_cents, status)
		VALUES (?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		b.ListingID, b.UserID, b.StartDate.Format(dateFmt), b.EndDate.Format(dateFmt),
		b.TotalPriceCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	row := tx.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, b.ID)
	return scanBooking(row, b)
}

func scanBooking(s rowScanner, b *model.Booking) error {
	return s.Scan(
		&b.ID, &b.ListingID, &b.UserID, &b.StartDate, &b.EndDate,
		&b.TotalPriceCents, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	return b, nil
}

// CancelForUser cancels a booking on behalf of its renter. It
// returns ErrBookingNotFound when the id is unknown, ErrForbidden
// when the requester is not the renter, and ErrConflict when the
// booking already left the cancellable states. The status guard in
// the UPDATE keeps a concurrent admin override from being silently
// overwritten after the application-level check.
func (r *BookingRepo) CancelForUser(ctx context.Context, id, userID uint64) (model.Booking, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	if !model.Cancellable(b.Status) {
		return model.Booking{}, ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE id = ? AND status IN ('pending','confirmed')`, id)
	if err != nil {
		return model.Booking{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Booking{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// SetStatus unconditionally overwrites a booking's status. Reserved
// for admins; the handler validates the role and the enum value.
// There is no transition graph: completed and cancelled bookings can
// be revived by an explicit override.
func (r *BookingRepo) SetStatus(ctx context.Context, id uint64, status string) (model.Booking, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Booking{}, err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id); err != nil {
		return model.Booking{}, err
	}
	return r.GetByID(ctx, id)
}

// BookingDetail is a booking row joined with its listing for display
// to renters and admins. Dates are formatted as YYYY-MM-DD.
type BookingDetail struct {
	ID               uint64  `json:"id"`
	ListingID        uint64  `json:"listing_id"`
	UserID           uint64  `json:"user_id"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	Year             uint16  `json:"year"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	TotalPriceCents  uint32  `json:"total_price_cents"`
	TotalPrice       float64 `json:"total_price"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

const bookingDetailSQL = `SELECT b.id, b.listing_id, b.user_id, l.brand, l.model, l.year,
		b.start_date, b.end_date, b.total_price_cents, l.price_per_day_cents, b.status, b.created_at
	FROM bookings b
	JOIN listings l ON l.id = b.listing_id`

// ListByUser returns all bookings made by the given renter, newest
// first, with listing details attached.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.queryDetails(ctx, bookingDetailSQL+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
}

// ListByStatus returns all bookings in the given state, oldest first.
// Admins use this to review pending bookings.
func (r *BookingRepo) ListByStatus(ctx context.Context, status string) ([]BookingDetail, error) {
	return r.queryDetails(ctx, bookingDetailSQL+` WHERE b.status = ? ORDER BY b.created_at ASC`, status)
}

func (r *BookingRepo) queryDetails(ctx context.Context, query string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d          BookingDetail
			start, end time.Time
			created    time.Time
		)
		if err := rows.Scan(
			&d.ID, &d.ListingID, &d.UserID, &d.Brand, &d.Model, &d.Year,
			&start, &end, &d.TotalPriceCents, &d.PricePerDayCents, &d.Status, &created,
		); err != nil {
			return nil, err
		}
		d.StartDate = start.Format(dateFmt)
		d.EndDate = end.Format(dateFmt)
		d.TotalPrice = float64(d.TotalPriceCents) / 100.0
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportRow carries one booking joined with listing and renter data
// for the admin spreadsheet export.
type ExportRow struct {
	ID              uint64
	Vehicle         string
	RenterName      string
	RenterEmail     string
	StartDate       string
	EndDate         string
	TotalPriceCents uint32
	Status          string
	CreatedAt       time.Time
}

// ListAllForExport returns every booking with renter and vehicle
// columns resolved, oldest first.
func (r *BookingRepo) ListAllForExport(ctx context.Context) ([]ExportRow, error) {
	const q = `SELECT b.id, CONCAT(l.brand, ' ', l.model), u.name, u.email,
			b.start_date, b.end_date, b.total_price_cents, b.status, b.created_at
		FROM bookings b
		JOIN listings l ON l.id = b.listing_id
		JOIN users u    ON u.id = b.user_id
		ORDER BY b.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ExportRow, 0)
	for rows.Next() {
		var (
			e          ExportRow
			start, end time.Time
		)
		if err := rows.Scan(&e.ID, &e.Vehicle, &e.RenterName, &e.RenterEmail,
			&start, &end, &e.TotalPriceCents, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.StartDate = start.Format(dateFmt)
		e.EndDate = end.Format(dateFmt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
