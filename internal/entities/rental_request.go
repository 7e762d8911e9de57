package entities

import "time"

type CreateRentalRequest struct {
	EquipmentID string `json:"equipment_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type RentalResponse struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	EquipmentID     string    `json:"equipment_id"`
	RenterID        string    `json:"renter_id"`
	OwnerID         string    `json:"owner_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalValue      float64   `json:"total_value"`
	Status          string    `json:"status"`
	StripePaymentID string    `json:"stripe_payment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
