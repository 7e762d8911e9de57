package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"equiprent/internal/db"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetStalePendingRentalIDs finds pending rentals created before the cutoff.
func (r *JobRepository) GetStalePendingRentalIDs(before time.Time) ([]string, error) {
	query := `SELECT id FROM rentals WHERE status = $1 AND created_at < $2`
	rows, err := r.DB.Query(query, db.StatusPending, before)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending rentals: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning rental ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// CancelRentals transitions the given rentals to cancelled, guarded on the
// pending status so a concurrent approval survives the sweep.
func (r *JobRepository) CancelRentals(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE rentals SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`
	result, err := r.DB.Exec(query, db.StatusCancelled, pq.Array(ids), db.StatusPending)
	if err != nil {
		return fmt.Errorf("error cancelling stale rentals: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Cancelled %d stale pending rentals", rowsAffected)
	}
	return nil
}
