package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

var userRows = []string{
	"id", "username", "email", "password_hash",
	"subscription_tier", "subscribed_date", "created_at", "updated_at",
}

func sampleUser() *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:               "usr-abc123",
		Username:         "alice",
		Email:            "alice@example.com",
		PasswordHash:     "$2a$10$hash",
		SubscriptionTier: models.TierBasic,
		SubscribedDate:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	user := sampleUser()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Username, user.Email, user.PasswordHash,
			"Basic", user.SubscribedDate, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	require.NoError(t, repo.Create(user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	repo := NewUserRepository(db)
	err = repo.Create(sampleUser())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepositoryCreateDuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	repo := NewUserRepository(db)
	err = repo.Create(sampleUser())
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	user := sampleUser()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRows).AddRow(
			user.ID, user.Username, user.Email, user.PasswordHash,
			"Basic", user.SubscribedDate, user.CreatedAt, user.UpdatedAt,
		))

	repo := NewUserRepository(db)
	got, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.TierBasic, got.SubscriptionTier)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
}

func TestUserRepositoryGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRows))

	repo := NewUserRepository(db)
	_, err = repo.GetByUsername("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryGetByUsernameOrEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	user := sampleUser()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE \\(username = \\$1 OR email = \\$1\\)").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userRows).AddRow(
			user.ID, user.Username, user.Email, user.PasswordHash,
			"Basic", user.SubscribedDate, user.CreatedAt, user.UpdatedAt,
		))

	repo := NewUserRepository(db)
	got, err := repo.GetByUsernameOrEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}
