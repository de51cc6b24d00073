package query

import (
	"context"
	"errors"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/cqrs"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/repository"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/token"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthQueryService handles login, token verification and token refresh.
// These operations don't mutate application state, so there is no
// corresponding command service method for them.
type AuthQueryService struct {
	userRepo *repository.UserRepository
	readRepo *repository.UserReadRepository
	tokens   *token.Manager
}

func NewAuthQueryService(
	userRepo *repository.UserRepository,
	readRepo *repository.UserReadRepository,
	tokens *token.Manager,
) *AuthQueryService {
	return &AuthQueryService{
		userRepo: userRepo,
		readRepo: readRepo,
		tokens:   tokens,
	}
}

// Login checks the credentials against the write store and issues a fresh
// access token. The identifier may be a username or an email address.
func (s *AuthQueryService) Login(cmd cqrs.LoginCommand) (string, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(cmd.Identifier)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// VerifyToken validates a token and returns its decoded claims.
func (s *AuthQueryService) VerifyToken(cmd cqrs.VerifyTokenCommand) (*token.Claims, error) {
	return s.tokens.Verify(cmd.Token)
}

// RefreshToken exchanges a still-valid token for a new one. The user is
// re-read so a refreshed token picks up tier changes.
func (s *AuthQueryService) RefreshToken(cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := s.tokens.Verify(cmd.Token)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByUsername(claims.Subject)
	if err != nil {
		return "", token.ErrInvalidToken
	}
	return s.tokens.Issue(user)
}

// GetUser returns the read-model projection for a username.
func (s *AuthQueryService) GetUser(qry cqrs.GetUserQuery) (*models.UserView, error) {
	return s.readRepo.GetByUsername(context.Background(), qry.Username)
}
