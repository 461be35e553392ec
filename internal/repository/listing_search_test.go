package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/peerauto/car-rental-api/internal/model"
)

func searchCols() []string {
	return []string{
		"id", "brand", "model", "year", "price_per_day_cents",
		"description", "location", "image_url", "is_available",
		"avg_rating", "rating_count",
	}
}

func TestSearchPinsApprovedStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewListingRepo(db)

	// status is always the first condition and always 'approved',
	// regardless of caller-supplied filters
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(model.ListingApproved).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("LEFT JOIN ratings").
		WithArgs(model.ListingApproved, 20, 0).
		WillReturnRows(sqlmock.NewRows(searchCols()).
			AddRow(7, "Renault", "Clio", 2020, 5000, "city car", "Paris", "", true, 4.5, 2))

	rows, total, err := repo.Search(context.Background(), ListingSearchQuery{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", total, len(rows))
	}
	if rows[0].PricePerDay != 50.00 {
		t.Errorf("PricePerDay = %v, want 50.00", rows[0].PricePerDay)
	}
	if rows[0].AverageRating != 4.5 || rows[0].RatingCount != 2 {
		t.Errorf("aggregate = %v/%d, want 4.5/2", rows[0].AverageRating, rows[0].RatingCount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSearchFiltersAndPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewListingRepo(db)

	q := ListingSearchQuery{
		Brand:         "Renault",
		Location:      "Paris",
		MinPriceCents: 1000,
		MaxPriceCents: 8000,
		Page:          3,
		PageSize:      10,
	}

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(model.ListingApproved, "renault", "paris", int64(1000), int64(8000)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(25))
	// page 3 of 10 means offset 20
	mock.ExpectQuery("LEFT JOIN ratings").
		WithArgs(model.ListingApproved, "renault", "paris", int64(1000), int64(8000), 10, 20).
		WillReturnRows(sqlmock.NewRows(searchCols()))

	rows, total, err := repo.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(rows) != 0 {
		t.Errorf("len = %d, want 0", len(rows))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSearchFreeTextExpandsToFourColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewListingRepo(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(model.ListingApproved, "%clio%", "%clio%", "%clio%", "%clio%").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery("LEFT JOIN ratings").
		WithArgs(model.ListingApproved, "%clio%", "%clio%", "%clio%", "%clio%", 20, 0).
		WillReturnRows(sqlmock.NewRows(searchCols()))

	_, total, err := repo.Search(context.Background(), ListingSearchQuery{Query: "Clio", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
