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

func newRatingTestHandler(t *testing.T) (*RatingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRatingHandler(
		repository.NewRatingRepo(db),
		repository.NewListingRepo(db),
	), mock
}

func submitRating(t *testing.T, h *RatingHandler, uid uint64, listingID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/listings/"+listingID+"/ratings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(listingID)
	c.Set("user_id", uid)
	c.Set("role", model.RoleUser)
	if err := h.SubmitRating(c); err != nil {
		t.Fatalf("SubmitRating: %v", err)
	}
	return rec
}

func TestSubmitRatingRecomputesAverage(t *testing.T) {
	h, mock := newRatingTestHandler(t)
	now := time.Now()

	mock.ExpectQuery("FROM listings WHERE id").
		WithArgs(uint64(7)).
		WillReturnRows(approvedListingRows(7, 9, 5000))
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs(uint64(7), uint64(12), 3, "").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM ratings WHERE listing_id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "user_id", "score", "comment", "created_at", "updated_at",
		}).
			AddRow(1, 7, 10, 5, "", now, now).
			AddRow(2, 7, 11, 4, "", now, now).
			AddRow(3, 7, 12, 3, "", now, now))

	rec := submitRating(t, h, 12, "7", `{"score":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["average_rating"].(float64) != 4.0 {
		t.Errorf("average_rating = %v, want 4.0", got["average_rating"])
	}
	if got["rating_count"].(float64) != 3 {
		t.Errorf("rating_count = %v, want 3", got["rating_count"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSubmitRatingScoreOutOfRange(t *testing.T) {
	h, _ := newRatingTestHandler(t)
	for _, body := range []string{`{"score":0}`, `{"score":6}`, `{"score":-1}`} {
		rec := submitRating(t, h, 12, "7", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSubmitRatingUnknownListing(t *testing.T) {
	h, mock := newRatingTestHandler(t)

	mock.ExpectQuery("FROM listings WHERE id").
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "brand", "model", "year", "price_per_day_cents",
			"description", "location", "image_url", "status", "is_available",
			"created_at", "updated_at",
		}))

	rec := submitRating(t, h, 12, "404", `{"score":4}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
