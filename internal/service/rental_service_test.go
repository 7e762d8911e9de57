package service

import (
	"testing"
	"time"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	httperrors "equiprent/internal/errors"
	"equiprent/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalService(t *testing.T) (*RentalService, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	svc := NewRentalService(
		repository.NewRentalRepository(database),
		repository.NewEquipmentRepository(database),
		repository.NewUserRepository(database),
		nil,
	)
	return svc, mock
}

func rentalRows(rental db.Rental) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "equipment_id", "renter_id", "owner_id", "start_date", "end_date",
		"total_value", "status", "stripe_payment_id", "created_at", "updated_at",
	}).AddRow(
		rental.ID, rental.Code, rental.EquipmentID, rental.RenterID, rental.OwnerID,
		rental.StartDate, rental.EndDate, rental.TotalValue, rental.Status,
		rental.StripePaymentID, time.Now(), time.Now(),
	)
}

func TestRentalDays(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	assert.Equal(t, 5, RentalDays(day("2025-01-01"), day("2025-01-06")))
	assert.Equal(t, 0, RentalDays(day("2025-01-01"), day("2025-01-01")))
	assert.Equal(t, 2, RentalDays(day("2025-01-20"), day("2025-01-22")))
	// Partial days round up.
	start := day("2025-01-01")
	assert.Equal(t, 2, RentalDays(start, start.Add(36*time.Hour)))
}

func TestCreateRental(t *testing.T) {
	renter := auth.AuthUser{ID: "renter-1", Role: db.RoleRenter}

	t.Run("ComputesTotalServerSide", func(t *testing.T) {
		svc, mock := newRentalService(t)

		mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = \\$1").
			WithArgs("eq-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "price_per_day", "available", "created_at"}).
				AddRow("eq-1", "vendor-1", "PA System", "", 200.0, true, time.Now()))
		mock.ExpectQuery("SELECT COUNT\\(id\\) FROM rentals").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO rentals").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

		rental, err := svc.CreateRental(renter, entities.CreateRentalRequest{
			EquipmentID: "eq-1",
			StartDate:   "2025-01-20",
			EndDate:     "2025-01-22",
		})
		require.NoError(t, err)
		assert.Equal(t, 400.0, rental.TotalValue)
		assert.Equal(t, db.StatusPending, rental.Status)
		assert.Equal(t, "vendor-1", rental.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectsOverlappingDates", func(t *testing.T) {
		svc, mock := newRentalService(t)

		mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = \\$1").
			WithArgs("eq-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "price_per_day", "available", "created_at"}).
				AddRow("eq-1", "vendor-1", "PA System", "", 200.0, true, time.Now()))
		mock.ExpectQuery("SELECT COUNT\\(id\\) FROM rentals").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := svc.CreateRental(renter, entities.CreateRentalRequest{
			EquipmentID: "eq-1",
			StartDate:   "2025-01-20",
			EndDate:     "2025-01-22",
		})
		httpErr := asHTTPError(t, err)
		assert.Equal(t, 400, httpErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectsOwnEquipment", func(t *testing.T) {
		svc, mock := newRentalService(t)

		mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = \\$1").
			WithArgs("eq-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "price_per_day", "available", "created_at"}).
				AddRow("eq-1", renter.ID, "PA System", "", 200.0, true, time.Now()))

		_, err := svc.CreateRental(renter, entities.CreateRentalRequest{
			EquipmentID: "eq-1",
			StartDate:   "2025-01-20",
			EndDate:     "2025-01-22",
		})
		httpErr := asHTTPError(t, err)
		assert.Equal(t, 400, httpErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApproveRental(t *testing.T) {
	owner := auth.AuthUser{ID: "vendor-1", Role: db.RoleVendor}
	rental := db.Rental{
		ID: "rent-1", Code: "AB12CD34", EquipmentID: "eq-1",
		RenterID: "renter-1", OwnerID: "vendor-1",
		StartDate: time.Now(), EndDate: time.Now().Add(48 * time.Hour),
		TotalValue: 400, Status: db.StatusPending,
	}

	t.Run("Success", func(t *testing.T) {
		svc, mock := newRentalService(t)

		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs("rent-1").
			WillReturnRows(rentalRows(rental))
		mock.ExpectExec("UPDATE rentals SET status = \\$1").
			WithArgs(db.StatusApproved, "rent-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := svc.ApproveRental(owner, "rent-1")
		require.NoError(t, err)
		assert.Equal(t, db.StatusApproved, updated.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ForbiddenForNonOwner", func(t *testing.T) {
		svc, mock := newRentalService(t)

		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs("rent-1").
			WillReturnRows(rentalRows(rental))

		_, err := svc.ApproveRental(auth.AuthUser{ID: "someone-else"}, "rent-1")
		httpErr := asHTTPError(t, err)
		assert.Equal(t, 403, httpErr.Code)
		// No update must have been attempted.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InvalidStateWhenNotPending", func(t *testing.T) {
		svc, mock := newRentalService(t)

		approved := rental
		approved.Status = db.StatusApproved
		mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
			WithArgs("rent-1").
			WillReturnRows(rentalRows(approved))
		mock.ExpectExec("UPDATE rentals SET status = \\$1").
			WithArgs(db.StatusApproved, "rent-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := svc.ApproveRental(owner, "rent-1")
		httpErr := asHTTPError(t, err)
		assert.Equal(t, 400, httpErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectRental_ForbiddenLeavesStatusUnchanged(t *testing.T) {
	svc, mock := newRentalService(t)

	rental := db.Rental{
		ID: "rent-1", Code: "AB12CD34", EquipmentID: "eq-1",
		RenterID: "renter-1", OwnerID: "vendor-1",
		StartDate: time.Now(), EndDate: time.Now().Add(48 * time.Hour),
		TotalValue: 400, Status: db.StatusPending,
	}
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
		WithArgs("rent-1").
		WillReturnRows(rentalRows(rental))

	_, err := svc.RejectRental(auth.AuthUser{ID: "renter-1"}, "rent-1")
	httpErr := asHTTPError(t, err)
	assert.Equal(t, 403, httpErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func asHTTPError(t *testing.T, err error) *httperrors.HTTPError {
	t.Helper()
	require.Error(t, err)
	httpErr, ok := err.(*httperrors.HTTPError)
	require.True(t, ok, "expected HTTPError, got %T: %v", err, err)
	return httpErr
}
