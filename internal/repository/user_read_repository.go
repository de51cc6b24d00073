package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	authredis "github.com/Rakete-RSO/zapiski-ai-auth/internal/redis"
)

const userViewKeyPrefix = "user:view:"

// UserReadRepository handles all read operations for users.
// It uses Redis as the primary read store, falling back to PostgreSQL on a miss.
type UserReadRepository struct {
	db    *sql.DB
	cache *authredis.ViewCache[models.UserView]
}

func NewUserReadRepository(db *sql.DB, redisClient *goredis.Client) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		cache: authredis.NewViewCache[models.UserView](redisClient, 0),
	}
}

// GetByUsername returns a UserView from Redis first, then PostgreSQL.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserView, error) {
	cacheKey := userViewKeyPrefix + username

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	// Fallback: PostgreSQL
	query := `
		SELECT id, username, email, subscription_tier, subscribed_date
		FROM users
		WHERE username = $1 AND deleted_at IS NULL
	`
	var view models.UserView
	var tier string

	pgErr := r.db.QueryRowContext(ctx, query, username).Scan(
		&view.ID, &view.Username, &view.Email, &tier, &view.SubscribedDate,
	)
	if pgErr == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if pgErr != nil {
		return nil, fmt.Errorf("failed to get user: %w", pgErr)
	}
	view.SubscriptionTier = models.SubscriptionTier(tier)

	// Warm the cache
	r.CacheUserView(ctx, &view)
	return &view, nil
}

// CacheUserView stores or refreshes the Redis read model for a user.
// Called by the command service after every mutation.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	r.cache.Set(ctx, userViewKeyPrefix+view.Username, view)
}

// InvalidateUserView removes the Redis read model entry for a user.
func (r *UserReadRepository) InvalidateUserView(ctx context.Context, username string) {
	r.cache.Delete(ctx, userViewKeyPrefix+username)
}
