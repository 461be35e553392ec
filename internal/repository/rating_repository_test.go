package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRatingUpsertRoutesDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewRatingRepo(db)

	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs(uint64(7), uint64(2), 5, "great car").
		WillReturnResult(sqlmock.NewResult(11, 1))

	if err := repo.Upsert(context.Background(), 7, 2, 5, "great car"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// second submission by the same rater hits the duplicate-key
	// branch; MySQL reports 2 affected rows for an in-place update
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WithArgs(uint64(7), uint64(2), 3, "revised").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.Upsert(context.Background(), 7, 2, 3, "revised"); err != nil {
		t.Fatalf("Upsert (resubmit): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListByListingInsertionOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewRatingRepo(db)

	now := time.Now()
	mock.ExpectQuery("FROM ratings WHERE listing_id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "user_id", "score", "comment", "created_at", "updated_at",
		}).
			AddRow(1, 7, 10, 5, "first", now, now).
			AddRow(2, 7, 11, 4, "second", now, now).
			AddRow(3, 7, 12, 3, "third", now, now))

	got, err := repo.ListByListing(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByListing: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, wantID := range []uint64{1, 2, 3} {
		if got[i].ID != wantID {
			t.Errorf("ratings[%d].ID = %d, want %d", i, got[i].ID, wantID)
		}
	}
}
