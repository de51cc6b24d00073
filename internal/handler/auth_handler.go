package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/command"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/cqrs"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/middleware"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/repository"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/token"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Register(cqrs.RegisterUserCommand) (*models.User, error)
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(cqrs.LoginCommand) (string, error)
	RefreshToken(cqrs.RefreshTokenCommand) (string, error)
	VerifyToken(cqrs.VerifyTokenCommand) (*token.Claims, error)
	GetUser(cqrs.GetUserQuery) (*models.UserView, error)
}

// AuthHandler routes requests to the command or query service as appropriate.
type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// TokenResponse mirrors the OAuth2 password flow response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.Register(cqrs.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user.View())
	case errors.Is(err, repository.ErrUsernameTaken), errors.Is(err, repository.ErrEmailTaken):
		middleware.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, command.ErrWeakPassword), errors.Is(err, command.ErrInvalidEmail):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to register user")
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	accessToken, err := h.queries.Login(cqrs.LoginCommand{
		Identifier: req.Username,
		Password:   req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

// VerifyToken reports whether the presented bearer token is valid and
// returns its decoded payload.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":        "Token is valid",
		"token_info": claims,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	accessToken, err := h.queries.RefreshToken(cqrs.RefreshTokenCommand{Token: req.Token})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	username, ok := middleware.GetUsername(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	view, err := h.queries.GetUser(cqrs.GetUserQuery{Username: username})
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, view)
}
