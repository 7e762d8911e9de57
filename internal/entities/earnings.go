package entities

import "time"

type PaymentResponse struct {
	ID              string    `json:"id"`
	RentalID        string    `json:"rental_id"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	StripeSessionID string    `json:"stripe_session_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type EarningsResponse struct {
	Total    float64           `json:"total"`
	Payments []PaymentResponse `json:"payments"`
}
