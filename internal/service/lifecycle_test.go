package service

import (
	"database/sql"
	"testing"
	"time"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	"equiprent/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Walks the full happy path: booking at 200/day for two days, vendor
// approval, checkout at 40000 cents with a 6000 cent platform fee, and the
// completion webhook settling the rental with a 400.00 payment.
func TestRentalLifecycle(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	rentalRepo := repository.NewRentalRepository(database)
	equipmentRepo := repository.NewEquipmentRepository(database)
	userRepo := repository.NewUserRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	rentalService := NewRentalService(rentalRepo, equipmentRepo, userRepo, nil)
	stripeClient := &stubStripeClient{sessionID: "cs_live_1", sessionURL: "https://checkout.stripe.com/pay"}
	paymentService := NewPaymentService(rentalRepo, paymentRepo, userRepo, equipmentRepo,
		stripeClient, nil, "http://localhost:3000")

	renter := auth.AuthUser{ID: "renter-1", Email: "renter@example.com", Role: db.RoleRenter}
	owner := auth.AuthUser{ID: "vendor-1", Email: "vendor@example.com", Role: db.RoleVendor}

	// Booking: 2025-01-20 -> 2025-01-22 at 200/day = 400.
	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = \\$1").
		WithArgs("eq-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "price_per_day", "available", "created_at"}).
			AddRow("eq-1", "vendor-1", "Stage Lighting", "", 200.0, true, time.Now()))
	mock.ExpectQuery("SELECT COUNT\\(id\\) FROM rentals").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO rentals").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	rental, err := rentalService.CreateRental(renter, entities.CreateRentalRequest{
		EquipmentID: "eq-1", StartDate: "2025-01-20", EndDate: "2025-01-22",
	})
	require.NoError(t, err)
	assert.Equal(t, 400.0, rental.TotalValue)

	// Vendor approves.
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
		WithArgs(rental.ID).
		WillReturnRows(rentalRows(*rental))
	mock.ExpectExec("UPDATE rentals SET status = \\$1").
		WithArgs(db.StatusApproved, rental.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	approved, err := rentalService.ApproveRental(owner, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusApproved, approved.Status)

	// Renter initiates checkout; the split is computed server-side.
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
		WithArgs(rental.ID).
		WillReturnRows(rentalRows(*approved))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("vendor-1").
		WillReturnRows(userRows(db.User{ID: "vendor-1", Email: "vendor@example.com", Role: db.RoleVendor, StripeAccountID: "acct_1"}))
	mock.ExpectExec("UPDATE rentals SET stripe_payment_id = \\$1").
		WithArgs("cs_live_1", rental.ID, db.StatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session, err := paymentService.CreateCheckoutSession(renter, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_live_1", session.SessionID)
	assert.Equal(t, int64(40000), stripeClient.lastCheckout.AmountCents)
	assert.Equal(t, int64(6000), stripeClient.lastCheckout.FeeCents)
	assert.Equal(t, int64(34000), stripeClient.lastCheckout.AmountCents-stripeClient.lastCheckout.FeeCents)

	// Stripe delivers the completion webhook.
	paid := *approved
	paid.StripePaymentID = "cs_live_1"
	mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\$1").
		WithArgs(rental.ID).
		WillReturnRows(rentalRows(paid))
	mock.ExpectExec("UPDATE rentals SET status = \\$1, stripe_payment_id = \\$2").
		WithArgs(db.StatusCompleted, "cs_live_1", rental.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE stripe_session_id = \\$1").
		WithArgs("cs_live_1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), rental.ID, 400.0, db.StatusCompleted, "cs_live_1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err = paymentService.HandleCheckoutCompleted(rental.ID, "cs_live_1", 40000)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
