package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

func sampleRecord() *models.BillingRecord {
	return &models.BillingRecord{
		ID:              "bil-xyz789",
		CustomerEmail:   "alice@example.com",
		Amount:          9.99,
		Currency:        "EUR",
		PaymentIntentID: "pi_123",
		ClientSecret:    "pi_123_secret",
		Status:          "succeeded",
		CreatedAt:       time.Now().UTC(),
	}
}

func TestBillingRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO billing_records").
		WithArgs(rec.ID, rec.CustomerEmail, rec.Amount, rec.Currency,
			rec.PaymentIntentID, rec.ClientSecret, rec.Status, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewBillingRepository(db)
	require.NoError(t, repo.Create(rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRepositoryListByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord()
	rows := sqlmock.NewRows([]string{
		"id", "customer_email", "amount", "currency",
		"payment_intent_id", "client_secret", "status", "created_at",
	}).AddRow(
		rec.ID, rec.CustomerEmail, rec.Amount, rec.Currency,
		rec.PaymentIntentID, rec.ClientSecret, rec.Status, rec.CreatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM billing_records").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	repo := NewBillingRepository(db)
	records, err := repo.ListByCustomer("alice@example.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pi_123", records[0].PaymentIntentID)
	assert.Equal(t, "succeeded", records[0].Status)
}

func TestBillingRepositoryListByCustomerEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM billing_records").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_email", "amount", "currency",
			"payment_intent_id", "client_secret", "status", "created_at",
		}))

	repo := NewBillingRepository(db)
	records, err := repo.ListByCustomer("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}
