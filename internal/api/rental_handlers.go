package api

import (
	"encoding/json"
	"net/http"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	"equiprent/internal/service"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	Service *service.RentalService
}

func NewRentalHandler(svc *service.RentalService) *RentalHandler {
	return &RentalHandler{Service: svc}
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req entities.CreateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rental, err := h.Service.CreateRental(user, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rentalResponse(rental))
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rentals, err := h.Service.ListRentals(user)
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]entities.RentalResponse, 0, len(rentals))
	for i := range rentals {
		responses = append(responses, rentalResponse(&rentals[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *RentalHandler) ApproveRental(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.Service.ApproveRental)
}

func (h *RentalHandler) RejectRental(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.Service.RejectRental)
}

func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	h.ownerTransition(w, r, h.Service.CancelRental)
}

func (h *RentalHandler) ownerTransition(w http.ResponseWriter, r *http.Request,
	apply func(auth.AuthUser, string) (*db.Rental, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rental, err := apply(user, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalResponse(rental))
}

func rentalResponse(rental *db.Rental) entities.RentalResponse {
	return entities.RentalResponse{
		ID:              rental.ID,
		Code:            rental.Code,
		EquipmentID:     rental.EquipmentID,
		RenterID:        rental.RenterID,
		OwnerID:         rental.OwnerID,
		StartDate:       rental.StartDate,
		EndDate:         rental.EndDate,
		TotalValue:      rental.TotalValue,
		Status:          rental.Status,
		StripePaymentID: rental.StripePaymentID,
		CreatedAt:       rental.CreatedAt,
		UpdatedAt:       rental.UpdatedAt,
	}
}
