package entities

import "time"

type CreateEquipmentRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PricePerDay float64 `json:"price_per_day"`
	Available   *bool   `json:"available,omitempty"`
}

type EquipmentResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PricePerDay float64   `json:"price_per_day"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}
