package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

// ErrInvalidToken is returned for tokens that fail signature, structure or
// expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	UserID string                  `json:"userId"`
	Email  string                  `json:"email"`
	Tier   models.SubscriptionTier `json:"tier"`
	jwt.RegisteredClaims
}

// Manager issues and verifies access tokens signed with an HMAC key.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
}

// NewManager builds a Manager for the given HS* algorithm name.
func NewManager(secret, algorithm string, expiry time.Duration) (*Manager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}
	return &Manager{
		secret: []byte(secret),
		method: method,
		expiry: expiry,
	}, nil
}

// Issue creates a signed access token for the user.
func (m *Manager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Tier:   user.SubscriptionTier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Only the configured signing
// method is accepted.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{m.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
