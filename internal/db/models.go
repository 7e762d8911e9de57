package db

import "time"

// Rental lifecycle statuses. completed, rejected and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// User roles.
const (
	RoleRenter = "renter"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

type User struct {
	ID              string
	Email           string
	Name            string
	Phone           string
	Role            string
	PasswordHash    string
	StripeAccountID string
	CreatedAt       time.Time
}

type Equipment struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	PricePerDay float64
	Available   bool
	CreatedAt   time.Time
}

type Rental struct {
	ID              string
	Code            string
	EquipmentID     string
	RenterID        string
	OwnerID         string
	StartDate       time.Time
	EndDate         time.Time
	TotalValue      float64
	Status          string
	StripePaymentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Payment struct {
	ID              string
	RentalID        string
	Amount          float64
	Status          string
	StripeSessionID string
	CreatedAt       time.Time
}
