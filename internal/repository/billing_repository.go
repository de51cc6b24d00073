package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

// BillingRepository persists payment results received from the billing
// service via the message queue.
type BillingRepository struct {
	db *sql.DB
}

func NewBillingRepository(db *sql.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) Create(record *models.BillingRecord) error {
	query := `
		INSERT INTO billing_records (id, customer_email, amount, currency, payment_intent_id, client_secret, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query,
		record.ID, record.CustomerEmail, record.Amount, record.Currency,
		record.PaymentIntentID, record.ClientSecret, record.Status, record.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("billing record %s already stored", record.PaymentIntentID)
		}
		return fmt.Errorf("failed to store billing record: %w", err)
	}
	return nil
}

// ListByCustomer returns the stored payment results for one customer email,
// newest first.
func (r *BillingRepository) ListByCustomer(email string) ([]*models.BillingRecord, error) {
	query := `
		SELECT id, customer_email, amount, currency, payment_intent_id, client_secret, status, created_at
		FROM billing_records
		WHERE customer_email = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing records: %w", err)
	}
	defer rows.Close()

	var records []*models.BillingRecord
	for rows.Next() {
		var rec models.BillingRecord
		if err := rows.Scan(
			&rec.ID, &rec.CustomerEmail, &rec.Amount, &rec.Currency,
			&rec.PaymentIntentID, &rec.ClientSecret, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan billing record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read billing records: %w", err)
	}
	return records, nil
}
