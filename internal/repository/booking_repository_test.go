package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/peerauto/car-rental-api/internal/model"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func bookingRows(b model.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "listing_id", "user_id", "start_date", "end_date",
		"total_price_cents", "status", "created_at", "updated_at",
	}).AddRow(b.ID, b.ListingID, b.UserID, b.StartDate, b.EndDate,
		b.TotalPriceCents, b.Status, b.CreatedAt, b.UpdatedAt)
}

func TestOverlapExistsArgOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	// the interval test is start_date <= requestEnd AND end_date >=
	// requestStart, so the bound params arrive as (end, start)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7), uint64(0), "2024-06-05", "2024-06-03").
		WillReturnRows(sqlmock.NewRows([]string{"ex"}).AddRow(true))

	taken, err := repo.OverlapExists(context.Background(), 7, day("2024-06-03"), day("2024-06-05"), 0)
	if err != nil {
		t.Fatalf("OverlapExists: %v", err)
	}
	if !taken {
		t.Error("OverlapExists = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestOverlapExistsFree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7), uint64(3), "2024-07-02", "2024-07-01").
		WillReturnRows(sqlmock.NewRows([]string{"ex"}).AddRow(false))

	taken, err := repo.OverlapExists(context.Background(), 7, day("2024-07-01"), day("2024-07-02"), 3)
	if err != nil {
		t.Fatalf("OverlapExists: %v", err)
	}
	if taken {
		t.Error("OverlapExists = true, want false")
	}
}

func TestCreateTxPopulatesBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(7), uint64(2), "2024-06-01", "2024-06-03", uint32(10000), model.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).
		WillReturnRows(bookingRows(model.Booking{
			ID: 41, ListingID: 7, UserID: 2,
			StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
			TotalPriceCents: 10000, Status: model.BookingConfirmed,
			CreatedAt: now, UpdatedAt: now,
		}))

	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	b := model.Booking{
		ListingID: 7, UserID: 2,
		StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
		TotalPriceCents: 10000, Status: model.BookingConfirmed,
	}
	if err := repo.CreateTx(context.Background(), tx, &b); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if b.ID != 41 {
		t.Errorf("booking ID = %d, want 41", b.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCancelForUserForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).
		WillReturnRows(bookingRows(model.Booking{
			ID: 41, ListingID: 7, UserID: 2,
			StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
			Status: model.BookingConfirmed,
		}))

	_, err = repo.CancelForUser(context.Background(), 41, 99)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("CancelForUser by stranger: err = %v, want ErrForbidden", err)
	}
}

func TestCancelForUserTerminalState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).
		WillReturnRows(bookingRows(model.Booking{
			ID: 41, ListingID: 7, UserID: 2,
			StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
			Status: model.BookingCompleted,
		}))

	_, err = repo.CancelForUser(context.Background(), 41, 2)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("cancel of completed booking: err = %v, want ErrConflict", err)
	}
}

func TestCancelForUserSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	before := model.Booking{
		ID: 41, ListingID: 7, UserID: 2,
		StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
		Status: model.BookingConfirmed,
	}
	after := before
	after.Status = model.BookingCancelled

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).WillReturnRows(bookingRows(before))
	mock.ExpectExec("UPDATE bookings SET status = 'cancelled'").
		WithArgs(uint64(41)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).WillReturnRows(bookingRows(after))

	got, err := repo.CancelForUser(context.Background(), 41, 2)
	if err != nil {
		t.Fatalf("CancelForUser: %v", err)
	}
	if got.Status != model.BookingCancelled {
		t.Errorf("status = %q, want %q", got.Status, model.BookingCancelled)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCancelForUserLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	// the status guard in the UPDATE catches a concurrent transition
	// that happened after the initial read
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).
		WillReturnRows(bookingRows(model.Booking{
			ID: 41, ListingID: 7, UserID: 2,
			StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
			Status: model.BookingConfirmed,
		}))
	mock.ExpectExec("UPDATE bookings SET status = 'cancelled'").
		WithArgs(uint64(41)).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.CancelForUser(context.Background(), 41, 2)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "user_id", "start_date", "end_date",
			"total_price_cents", "status", "created_at", "updated_at",
		}))

	_, err = repo.GetByID(context.Background(), 404)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestAdminSetStatusRevivesBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewBookingRepo(db)

	cancelled := model.Booking{
		ID: 41, ListingID: 7, UserID: 2,
		StartDate: day("2024-06-01"), EndDate: day("2024-06-03"),
		Status: model.BookingCancelled,
	}
	revived := cancelled
	revived.Status = model.BookingConfirmed

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).WillReturnRows(bookingRows(cancelled))
	mock.ExpectExec("UPDATE bookings SET status = ?").
		WithArgs(model.BookingConfirmed, uint64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).WillReturnRows(bookingRows(revived))

	got, err := repo.SetStatus(context.Background(), 41, model.BookingConfirmed)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got.Status != model.BookingConfirmed {
		t.Errorf("status = %q, want %q", got.Status, model.BookingConfirmed)
	}
}
