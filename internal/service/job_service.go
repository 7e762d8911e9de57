package service

import (
	"fmt"
	"log"
	"time"

	"equiprent/internal/repository"
)

// stalePendingAge is how long a rental may sit pending before the sweep
// cancels it.
const stalePendingAge = 7 * 24 * time.Hour

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// CancelStalePendingRentals cancels rentals the vendor never acted on.
func (s *JobService) CancelStalePendingRentals() error {
	log.Println("Cron Job: Checking for stale pending rentals...")

	cutoff := time.Now().UTC().Add(-stalePendingAge)
	rentalIDs, err := s.Repo.GetStalePendingRentalIDs(cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending rentals: %w", err)
	}

	if len(rentalIDs) == 0 {
		log.Println("Cron Job: No stale pending rentals found.")
		return nil
	}

	log.Printf("Cron Job: Found %d stale pending rentals. IDs: %v", len(rentalIDs), rentalIDs)

	if err := s.Repo.CancelRentals(rentalIDs); err != nil {
		return fmt.Errorf("cron job: failed to cancel stale rentals: %w", err)
	}
	return nil
}
