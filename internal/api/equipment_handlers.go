package api

import (
	"encoding/json"
	"net/http"

	"equiprent/internal/auth"
	"equiprent/internal/db"
	"equiprent/internal/entities"
	"equiprent/internal/repository"

	"github.com/google/uuid"
)

type EquipmentHandler struct {
	Repo *repository.EquipmentRepository
}

func NewEquipmentHandler(repo *repository.EquipmentRepository) *EquipmentHandler {
	return &EquipmentHandler{Repo: repo}
}

func (h *EquipmentHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if user.Role != db.RoleVendor {
		http.Error(w, "Only vendors can list equipment", http.StatusForbidden)
		return
	}

	var req entities.CreateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.PricePerDay <= 0 {
		http.Error(w, "name and a positive price_per_day are required", http.StatusBadRequest)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	equipment := &db.Equipment{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: req.Description,
		PricePerDay: req.PricePerDay,
		Available:   available,
	}
	if err := h.Repo.CreateEquipment(equipment); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, equipmentResponse(equipment))
}

func (h *EquipmentHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	items, err := h.Repo.ListEquipment(ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]entities.EquipmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, equipmentResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func equipmentResponse(e *db.Equipment) entities.EquipmentResponse {
	return entities.EquipmentResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Name:        e.Name,
		Description: e.Description,
		PricePerDay: e.PricePerDay,
		Available:   e.Available,
		CreatedAt:   e.CreatedAt,
	}
}
