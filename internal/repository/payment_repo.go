package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"equiprent/internal/db"

	"github.com/lib/pq"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(database *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: database}
}

// GetPaymentBySessionID returns (nil, nil) when no payment exists for the
// checkout session. The session id is the idempotency key for webhook
// redelivery.
func (r *PaymentRepository) GetPaymentBySessionID(sessionID string) (*db.Payment, error) {
	var p db.Payment
	query := `
		SELECT id, rental_id, amount, status, stripe_session_id, created_at
		FROM payments WHERE stripe_session_id = $1`
	err := r.DB.QueryRow(query, sessionID).Scan(
		&p.ID, &p.RentalID, &p.Amount, &p.Status, &p.StripeSessionID, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying payment by session: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) CreatePayment(p *db.Payment) error {
	query := `
		INSERT INTO payments (id, rental_id, amount, status, stripe_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at`
	err := r.DB.QueryRow(query, p.ID, p.RentalID, p.Amount, p.Status, p.StripeSessionID).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating payment for rental %s: %w", p.RentalID, err)
	}
	return nil
}

func (r *PaymentRepository) ListPaymentsByRentalIDs(rentalIDs []string) ([]db.Payment, error) {
	if len(rentalIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, rental_id, amount, status, stripe_session_id, created_at
		FROM payments WHERE rental_id = ANY($1) ORDER BY created_at DESC`
	return r.queryPayments(query, pq.Array(rentalIDs))
}

func (r *PaymentRepository) ListPayments() ([]db.Payment, error) {
	query := `
		SELECT id, rental_id, amount, status, stripe_session_id, created_at
		FROM payments ORDER BY created_at DESC`
	return r.queryPayments(query)
}

func (r *PaymentRepository) queryPayments(query string, args ...interface{}) ([]db.Payment, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	var payments []db.Payment
	for rows.Next() {
		var p db.Payment
		if err := rows.Scan(&p.ID, &p.RentalID, &p.Amount, &p.Status, &p.StripeSessionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
