package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"equiprent/internal/db"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

func (r *UserRepository) CreateUser(u *db.User) error {
	query := `
		INSERT INTO users (id, email, name, phone, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`
	return r.DB.QueryRow(query, u.ID, u.Email, u.Name, u.Phone, u.Role, u.PasswordHash).
		Scan(&u.CreatedAt)
}

// GetUserByEmail returns (nil, nil) when no user exists for the email.
func (r *UserRepository) GetUserByEmail(email string) (*db.User, error) {
	var u db.User
	var phone, stripeAccountID sql.NullString
	query := `
		SELECT id, email, name, phone, role, password_hash, COALESCE(stripe_account_id, ''), created_at
		FROM users WHERE email = $1`
	err := r.DB.QueryRow(query, email).Scan(
		&u.ID, &u.Email, &u.Name, &phone, &u.Role, &u.PasswordHash, &stripeAccountID, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	u.Phone = phone.String
	u.StripeAccountID = stripeAccountID.String
	return &u, nil
}

func (r *UserRepository) GetUserByID(id string) (*db.User, error) {
	var u db.User
	var phone, stripeAccountID sql.NullString
	query := `
		SELECT id, email, name, phone, role, password_hash, COALESCE(stripe_account_id, ''), created_at
		FROM users WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&u.ID, &u.Email, &u.Name, &phone, &u.Role, &u.PasswordHash, &stripeAccountID, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user '%s' not found: %w", id, err)
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	u.Phone = phone.String
	u.StripeAccountID = stripeAccountID.String
	return &u, nil
}

func (r *UserRepository) UpdateStripeAccountID(userID, accountID string) error {
	_, err := r.DB.Exec(`UPDATE users SET stripe_account_id = $2 WHERE id = $1`, userID, accountID)
	if err != nil {
		return fmt.Errorf("error updating stripe account for user %s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) ListUsers() ([]db.User, error) {
	query := `
		SELECT id, email, name, COALESCE(phone, ''), role, COALESCE(stripe_account_id, ''), created_at
		FROM users ORDER BY created_at DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.StripeAccountID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
