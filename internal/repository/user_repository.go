package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

const userColumns = `id, username, email, password_hash, subscription_tier, subscribed_date, created_at, updated_at`

// UserRepository handles all state-mutating operations for users.
// It operates exclusively against the PostgreSQL write store (source of truth).
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, subscription_tier, subscribed_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		string(user.SubscriptionTier), user.SubscribedDate,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername fetches the full write model (including PasswordHash).
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, username))
}

// GetByUsernameOrEmail looks a user up by either identifier. Login accepts
// both forms.
func (r *UserRepository) GetByUsernameOrEmail(identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE (username = $1 OR email = $1) AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, identifier))
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var tier string

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&tier, &user.SubscribedDate, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.SubscriptionTier = models.SubscriptionTier(tier)
	return &user, nil
}
