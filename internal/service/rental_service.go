package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	httperrors "equiprent/internal/errors"
	"equiprent/internal/repository"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type RentalService struct {
	Repo      *repository.RentalRepository
	Equipment *repository.EquipmentRepository
	Users     *repository.UserRepository
	sender    *SenderService
}

func NewRentalService(repo *repository.RentalRepository, equipment *repository.EquipmentRepository,
	users *repository.UserRepository, sender *SenderService) *RentalService {
	return &RentalService{
		Repo:      repo,
		Equipment: equipment,
		Users:     users,
		sender:    sender,
	}
}

// RentalDays returns the number of chargeable days, rounding partial days up.
// A same-day range counts as zero days.
func RentalDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (s *RentalService) CreateRental(user auth.AuthUser, req entities.CreateRentalRequest) (*db.Rental, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, httperrors.ErrValidation("start_date must be formatted as YYYY-MM-DD")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, httperrors.ErrValidation("end_date must be formatted as YYYY-MM-DD")
	}
	if req.EquipmentID == "" {
		return nil, httperrors.ErrValidation("equipment_id is required")
	}
	if endDate.Before(startDate) {
		return nil, httperrors.ErrValidation("end_date must not be before start_date")
	}

	equipment, err := s.Equipment.GetEquipmentByID(req.EquipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.ErrNotFound("equipment not found")
		}
		return nil, err
	}
	if equipment.OwnerID == user.ID {
		return nil, httperrors.ErrValidation("cannot rent your own equipment")
	}
	if !equipment.Available {
		return nil, httperrors.ErrInvalidState("equipment is not available")
	}

	days := RentalDays(startDate, endDate)
	if days == 0 {
		return nil, httperrors.ErrValidation("rental must span at least one day")
	}

	overlapping, err := s.Repo.CountOverlappingRentals(equipment.ID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, httperrors.ErrInvalidState("equipment is already booked for those dates")
	}

	id := uuid.NewString()
	rental := &db.Rental{
		ID:          id,
		Code:        strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8]),
		EquipmentID: equipment.ID,
		RenterID:    user.ID,
		OwnerID:     equipment.OwnerID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalValue:  float64(days) * equipment.PricePerDay,
		Status:      db.StatusPending,
	}
	if err := s.Repo.CreateRental(rental); err != nil {
		log.Printf("Error creating rental in repository: %v", err)
		return nil, err
	}
	return rental, nil
}

// ListRentals returns the rentals visible to the caller. Admins see all rows.
func (s *RentalService) ListRentals(user auth.AuthUser) ([]db.Rental, error) {
	if user.Role == db.RoleAdmin {
		return s.Repo.ListRentals()
	}
	return s.Repo.ListRentalsForUser(user.ID)
}

func (s *RentalService) ApproveRental(user auth.AuthUser, rentalID string) (*db.Rental, error) {
	rental, err := s.transition(user, rentalID, db.StatusApproved)
	if err != nil {
		return nil, err
	}
	s.notifyRenter(rental, db.StatusApproved)
	return rental, nil
}

func (s *RentalService) RejectRental(user auth.AuthUser, rentalID string) (*db.Rental, error) {
	return s.transition(user, rentalID, db.StatusRejected)
}

// transition applies an owner-authorized pending -> approved/rejected move.
func (s *RentalService) transition(user auth.AuthUser, rentalID, newStatus string) (*db.Rental, error) {
	rental, err := s.Repo.GetRentalByID(rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.ErrNotFound("rental not found")
		}
		return nil, err
	}
	if rental.OwnerID != user.ID {
		return nil, httperrors.ErrForbidden("only the equipment owner can do that")
	}

	ok, err := s.Repo.UpdateStatusIfCurrent(rentalID, newStatus, db.StatusPending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperrors.ErrInvalidState(fmt.Sprintf("rental is no longer pending, cannot set %s", newStatus))
	}
	rental.Status = newStatus
	return rental, nil
}

// CancelRental lets the renter or the owner abandon a rental that has not
// been paid. Terminal.
func (s *RentalService) CancelRental(user auth.AuthUser, rentalID string) (*db.Rental, error) {
	rental, err := s.Repo.GetRentalByID(rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.ErrNotFound("rental not found")
		}
		return nil, err
	}
	if rental.RenterID != user.ID && rental.OwnerID != user.ID {
		return nil, httperrors.ErrForbidden("only the renter or the owner can cancel")
	}

	ok, err := s.Repo.UpdateStatusIfCurrent(rentalID, db.StatusCancelled, db.StatusPending, db.StatusApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperrors.ErrInvalidState("rental can no longer be cancelled")
	}
	rental.Status = db.StatusCancelled
	s.notifyRenter(rental, db.StatusCancelled)
	return rental, nil
}

func (s *RentalService) notifyRenter(rental *db.Rental, status string) {
	if s.sender == nil {
		return
	}
	renter, err := s.Users.GetUserByID(rental.RenterID)
	if err != nil {
		log.Printf("Could not load renter %s for notification: %v", rental.RenterID, err)
		return
	}
	equipmentName := ""
	if equipment, err := s.Equipment.GetEquipmentByID(rental.EquipmentID); err == nil {
		equipmentName = equipment.Name
	}
	data := BuildRentalEmailData(renter.Name, rental.Code, equipmentName, status,
		rental.StartDate, rental.EndDate, rental.TotalValue)
	s.sender.NotifyRentalStatus(renter.Email, renter.Name, renter.Phone, data)
}
