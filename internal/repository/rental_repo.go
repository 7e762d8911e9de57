package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent/internal/db"

	"github.com/lib/pq"
)

const rentalColumns = `id, code, equipment_id, renter_id, owner_id, start_date, end_date,
	total_value, status, COALESCE(stripe_payment_id, ''), created_at, updated_at`

type RentalRepository struct {
	DB *sql.DB
}

func NewRentalRepository(database *sql.DB) *RentalRepository {
	return &RentalRepository{DB: database}
}

func (r *RentalRepository) CreateRental(rental *db.Rental) error {
	query := `
		INSERT INTO rentals
		(id, code, equipment_id, renter_id, owner_id, start_date, end_date, total_value, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`
	return r.DB.QueryRow(query,
		rental.ID,
		rental.Code,
		rental.EquipmentID,
		rental.RenterID,
		rental.OwnerID,
		rental.StartDate,
		rental.EndDate,
		rental.TotalValue,
		rental.Status,
	).Scan(&rental.CreatedAt, &rental.UpdatedAt)
}

func (r *RentalRepository) GetRentalByID(id string) (*db.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return r.scanRental(r.DB.QueryRow(query, id), id)
}

func (r *RentalRepository) GetRentalByStripeSessionID(sessionID string) (*db.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE stripe_payment_id = $1`
	return r.scanRental(r.DB.QueryRow(query, sessionID), sessionID)
}

func (r *RentalRepository) scanRental(row *sql.Row, key string) (*db.Rental, error) {
	var rental db.Rental
	err := row.Scan(
		&rental.ID, &rental.Code, &rental.EquipmentID, &rental.RenterID, &rental.OwnerID,
		&rental.StartDate, &rental.EndDate, &rental.TotalValue, &rental.Status,
		&rental.StripePaymentID, &rental.CreatedAt, &rental.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rental '%s' not found: %w", key, err)
		}
		return nil, fmt.Errorf("error querying rental: %w", err)
	}
	return &rental, nil
}

// UpdateStatusIfCurrent applies a conditional status transition. Returns
// false when the rental was not in any of the expected prior statuses, so a
// concurrent transition has already won.
func (r *RentalRepository) UpdateStatusIfCurrent(id, newStatus string, expected ...string) (bool, error) {
	query := `UPDATE rentals SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`
	result, err := r.DB.Exec(query, newStatus, id, pq.Array(expected))
	if err != nil {
		return false, fmt.Errorf("error updating rental %s status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetStripeSessionID stores the checkout session on an approved rental. The
// status guard keeps a session from attaching after a concurrent rejection.
func (r *RentalRepository) SetStripeSessionID(id, sessionID string) (bool, error) {
	query := `UPDATE rentals SET stripe_payment_id = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	result, err := r.DB.Exec(query, sessionID, id, db.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("error storing session on rental %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected > 0, nil
}

// CompleteRental marks the rental paid. Guarded on the prior status so a
// rental that was cancelled or rejected while its checkout session stayed
// open cannot be flipped back; completed stays in the expected set so setting
// the same terminal state twice is harmless and redelivery stays safe.
func (r *RentalRepository) CompleteRental(id, sessionID string) (bool, error) {
	query := `UPDATE rentals SET status = $1, stripe_payment_id = $2, updated_at = NOW() WHERE id = $3 AND status = ANY($4)`
	result, err := r.DB.Exec(query, db.StatusCompleted, sessionID, id,
		pq.Array([]string{db.StatusApproved, db.StatusCompleted}))
	if err != nil {
		return false, fmt.Errorf("error completing rental %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearExpiredSession drops the expired checkout session and leaves the
// rental approved so the renter can retry. No-op once the rental moved on.
func (r *RentalRepository) ClearExpiredSession(id string) error {
	query := `UPDATE rentals SET stripe_payment_id = NULL, updated_at = NOW() WHERE id = $1 AND status = $2`
	_, err := r.DB.Exec(query, id, db.StatusApproved)
	if err != nil {
		return fmt.Errorf("error clearing expired session on rental %s: %w", id, err)
	}
	return nil
}

// CountOverlappingRentals counts non-terminal rentals for the equipment whose
// date range overlaps [start, end).
func (r *RentalRepository) CountOverlappingRentals(equipmentID string, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(id) FROM rentals
		WHERE equipment_id = $1
		  AND status = ANY($2)
		  AND start_date < $4
		  AND end_date > $3`
	var count int
	err := r.DB.QueryRow(query, equipmentID, pq.Array([]string{db.StatusPending, db.StatusApproved, db.StatusCompleted}), start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping rentals: %w", err)
	}
	return count, nil
}

// ListRentalsForUser returns rentals where the user is renter or owner.
func (r *RentalRepository) ListRentalsForUser(userID string) ([]db.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE renter_id = $1 OR owner_id = $1 ORDER BY created_at DESC`
	return r.queryRentals(query, userID)
}

func (r *RentalRepository) ListRentals() ([]db.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY created_at DESC`
	return r.queryRentals(query)
}

func (r *RentalRepository) ListRentalIDsByOwner(ownerID string) ([]string, error) {
	rows, err := r.DB.Query(`SELECT id FROM rentals WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing rentals for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning rental id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *RentalRepository) queryRentals(query string, args ...interface{}) ([]db.Rental, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying rentals: %w", err)
	}
	defer rows.Close()

	var rentals []db.Rental
	for rows.Next() {
		var rental db.Rental
		err := rows.Scan(
			&rental.ID, &rental.Code, &rental.EquipmentID, &rental.RenterID, &rental.OwnerID,
			&rental.StartDate, &rental.EndDate, &rental.TotalValue, &rental.Status,
			&rental.StripePaymentID, &rental.CreatedAt, &rental.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning rental: %w", err)
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}
