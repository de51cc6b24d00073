package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/cqrs"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/events"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/repository"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/utils"
)

var (
	ErrWeakPassword = errors.New("password must be at least 8 characters long and include uppercase and lowercase letters")
	ErrInvalidEmail = errors.New("invalid email format")
)

// EventPublisher is the broker side-effect interface of the command service.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// AuthCommandService writes user state to PostgreSQL and keeps the Redis
// read model up to date.
type AuthCommandService struct {
	writeRepo *repository.UserRepository
	readRepo  *repository.UserReadRepository
	publisher EventPublisher
}

func NewAuthCommandService(
	writeRepo *repository.UserRepository,
	readRepo *repository.UserReadRepository,
	publisher EventPublisher,
) *AuthCommandService {
	return &AuthCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

// Register validates the payload, stores the user with a bcrypt password
// hash, and announces the registration to the rest of the product.
// New users start on the Basic tier.
func (s *AuthCommandService) Register(cmd cqrs.RegisterUserCommand) (*models.User, error) {
	if !utils.ValidateEmail(cmd.Email) {
		return nil, ErrInvalidEmail
	}
	if !utils.ValidatePassword(cmd.Password) {
		return nil, ErrWeakPassword
	}

	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:               utils.GenerateID("usr"),
		Username:         cmd.Username,
		Email:            cmd.Email,
		PasswordHash:     passwordHash,
		SubscriptionTier: models.TierBasic,
		SubscribedDate:   now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.writeRepo.Create(user); err != nil {
		return nil, err
	}

	ctx := context.Background()
	s.readRepo.CacheUserView(ctx, user.View())

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
			UserID:           user.ID,
			Username:         user.Username,
			Email:            user.Email,
			SubscriptionTier: string(user.SubscriptionTier),
		})
		if err != nil {
			slog.Warn("failed to publish user.registered event", "username", user.Username, "error", err)
		}
	}

	return user, nil
}
