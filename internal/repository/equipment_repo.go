package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"equiprent/internal/db"
)

type EquipmentRepository struct {
	DB *sql.DB
}

func NewEquipmentRepository(database *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{DB: database}
}

func (r *EquipmentRepository) CreateEquipment(e *db.Equipment) error {
	query := `
		INSERT INTO equipment (id, owner_id, name, description, price_per_day, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`
	return r.DB.QueryRow(query, e.ID, e.OwnerID, e.Name, e.Description, e.PricePerDay, e.Available).
		Scan(&e.CreatedAt)
}

func (r *EquipmentRepository) GetEquipmentByID(id string) (*db.Equipment, error) {
	var e db.Equipment
	query := `
		SELECT id, owner_id, name, description, price_per_day, available, created_at
		FROM equipment WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.Description, &e.PricePerDay, &e.Available, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("equipment '%s' not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying equipment: %w", err)
	}
	return &e, nil
}

// ListEquipment returns available equipment, optionally limited to one owner.
func (r *EquipmentRepository) ListEquipment(ownerID string) ([]db.Equipment, error) {
	query := `
		SELECT id, owner_id, name, description, price_per_day, available, created_at
		FROM equipment
		WHERE ($1 = '' AND available = TRUE) OR owner_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing equipment: %w", err)
	}
	defer rows.Close()

	var items []db.Equipment
	for rows.Next() {
		var e db.Equipment
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Description, &e.PricePerDay, &e.Available, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
