package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/peerauto/car-rental-api/internal/model"
	"github.com/peerauto/car-rental-api/internal/repository"
)

func newBookingTestHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBookingHandler(
		repository.NewBookingRepo(db),
		repository.NewListingRepo(db),
		nil, // notifications disabled in tests
	), mock
}

func postJSON(t *testing.T, h *BookingHandler, uid uint64, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uid)
	c.Set("role", model.RoleUser)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return rec
}

func approvedListingRows(id, ownerID uint64, priceCents uint32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "brand", "model", "year", "price_per_day_cents",
		"description", "location", "image_url", "status", "is_available",
		"created_at", "updated_at",
	}).AddRow(id, ownerID, "Renault", "Clio", 2020, priceCents,
		"city car", "Paris", "", model.ListingApproved, true, now, now)
}

func TestCreateBookingSuccess(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(approvedListingRows(7, 9, 5000))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7), uint64(0), "2024-06-03", "2024-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"ex"}).AddRow(false))
	// two billed days at 50.00
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(7), uint64(2), "2024-06-01", "2024-06-03", uint32(10000), model.BookingConfirmed).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(uint64(41)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "user_id", "start_date", "end_date",
			"total_price_cents", "status", "created_at", "updated_at",
		}).AddRow(41, 7, 2, day("2024-06-01"), day("2024-06-03"), 10000, model.BookingConfirmed, now, now))
	mock.ExpectCommit()

	rec := postJSON(t, h, 2, `{"listing_id":7,"start_date":"2024-06-01","end_date":"2024-06-03"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["total_price_cents"].(float64) != 10000 {
		t.Errorf("total_price_cents = %v, want 10000", got["total_price_cents"])
	}
	if got["status"] != model.BookingConfirmed {
		t.Errorf("status = %v, want %q", got["status"], model.BookingConfirmed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingOverlapRejected(t *testing.T) {
	h, mock := newBookingTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(approvedListingRows(7, 9, 5000))
	// boundary day shared with an existing confirmed booking
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7), uint64(0), "2024-06-05", "2024-06-03").
		WillReturnRows(sqlmock.NewRows([]string{"ex"}).AddRow(true))
	mock.ExpectRollback()

	rec := postJSON(t, h, 2, `{"listing_id":7,"start_date":"2024-06-03","end_date":"2024-06-05"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateBookingUnapprovedListing(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "brand", "model", "year", "price_per_day_cents",
			"description", "location", "image_url", "status", "is_available",
			"created_at", "updated_at",
		}).AddRow(7, 9, "Renault", "Clio", 2020, 5000,
			"city car", "Paris", "", model.ListingPending, true, now, now))
	mock.ExpectRollback()

	rec := postJSON(t, h, 2, `{"listing_id":7,"start_date":"2024-06-01","end_date":"2024-06-03"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingUnknownListing(t *testing.T) {
	h, mock := newBookingTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "brand", "model", "year", "price_per_day_cents",
			"description", "location", "image_url", "status", "is_available",
			"created_at", "updated_at",
		}))
	mock.ExpectRollback()

	rec := postJSON(t, h, 2, `{"listing_id":404,"start_date":"2024-06-01","end_date":"2024-06-03"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingBadDates(t *testing.T) {
	h, _ := newBookingTestHandler(t)

	cases := []string{
		`{"listing_id":7,"start_date":"2024-06-05","end_date":"2024-06-01"}`, // inverted
		`{"listing_id":7,"start_date":"01/06/2024","end_date":"03/06/2024"}`, // wrong format
		`{"listing_id":7,"start_date":"","end_date":"2024-06-03"}`,           // missing
	}
	for _, body := range cases {
		rec := postJSON(t, h, 2, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
