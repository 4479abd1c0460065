package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token secret is not configured")
)

// AccessClaims is carried by the short-lived access token.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is carried by the long-lived refresh token.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer signs and verifies the access/refresh token pair. Access and
// refresh tokens use different secrets so one can never pass for the other.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

func (t *TokenIssuer) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		// every token gets its own id, so a rotated token never equals the previous one
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Issue creates a new access/refresh pair for the given user.
func (t *TokenIssuer) Issue(userID, email, fullName string) (TokenPair, error) {
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		UserID:           userID,
		Email:            email,
		FullName:         fullName,
		RegisteredClaims: t.registered(t.cfg.AccessTTL),
	})
	accessToken, err := access.SignedString([]byte(t.cfg.AccessSecret))
	if err != nil {
		return TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		UserID:           userID,
		RegisteredClaims: t.registered(t.cfg.RefreshTTL),
	})
	refreshToken, err := refresh.SignedString([]byte(t.cfg.RefreshSecret))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateAccessToken validates a given access token string.
func (t *TokenIssuer) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(tokenStr, claims, t.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken validates a given refresh token string.
func (t *TokenIssuer) ValidateRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(tokenStr, claims, t.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenIssuer) parse(tokenStr string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
