package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:               "usr-abc123",
		Username:         "alice",
		Email:            "alice@example.com",
		SubscriptionTier: models.TierPro,
	}
}

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "usr-abc123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.TierPro, claims.Tier)
	assert.NotEmpty(t, claims.ID, "jti should be set")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewManager("secret-one", "HS256", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("secret-two", "HS256", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	issuer, err := NewManager("shared-secret", "HS512", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("shared-secret", "HS256", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, err := NewManager("test-secret", "HS256", -time.Minute)
	require.NoError(t, err)

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, err := NewManager("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestNewManagerRejectsNonHMAC(t *testing.T) {
	_, err := NewManager("secret", "RS256", time.Hour)
	assert.Error(t, err)

	_, err = NewManager("secret", "nonsense", time.Hour)
	assert.Error(t, err)
}
