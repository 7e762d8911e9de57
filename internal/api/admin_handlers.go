package api

import (
	"net/http"

	"equiprent/internal/repository"
)

// AdminHandler exposes read-only listings for the admin role.
type AdminHandler struct {
	Users    *repository.UserRepository
	Rentals  *repository.RentalRepository
	Payments *repository.PaymentRepository
}

func NewAdminHandler(users *repository.UserRepository, rentals *repository.RentalRepository,
	payments *repository.PaymentRepository) *AdminHandler {
	return &AdminHandler{Users: users, Rentals: rentals, Payments: payments}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	type userRow struct {
		ID              string `json:"id"`
		Email           string `json:"email"`
		Name            string `json:"name"`
		Role            string `json:"role"`
		StripeAccountID string `json:"stripe_account_id,omitempty"`
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:              u.ID,
			Email:           u.Email,
			Name:            u.Name,
			Role:            u.Role,
			StripeAccountID: u.StripeAccountID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": rows})
}

func (h *AdminHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Rentals.ListRentals()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Payments.ListPayments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
