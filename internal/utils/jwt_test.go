package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    10 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuerRequiresSecrets(t *testing.T) {
	_, err := NewTokenIssuer(TokenConfig{AccessSecret: "access"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(t)

	pair, err := issuer.Issue("64b000000000000000000001", "ada@school.test", "Ada")
	require.NoError(t, err)

	access, err := issuer.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", access.UserID)
	assert.Equal(t, "ada@school.test", access.Email)
	assert.Equal(t, "Ada", access.FullName)

	refresh, err := issuer.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "64b000000000000000000001", refresh.UserID)
	assert.NotEmpty(t, refresh.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue("id", "e", "n")
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
	_, err = issuer.ValidateRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestConsecutivePairsDiffer(t *testing.T) {
	issuer := newTestIssuer(t)
	first, err := issuer.Issue("id", "e", "n")
	require.NoError(t, err)
	second, err := issuer.Issue("id", "e", "n")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue("id", "e", "n")
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = issuer.ValidateRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRejectsOtherSigningMethods(t *testing.T) {
	issuer := newTestIssuer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &AccessClaims{UserID: "id"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(signed)
	assert.Error(t, err)
}
