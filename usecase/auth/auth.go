// Package auth issues short-lived access tokens for the board API. The
// daemon is single-user: one configured access key exchanges for a signed
// JWT, there is no user database.
package auth

import (
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
)

type UseCase struct {
	secret    []byte
	accessKey string
	ttl       time.Duration
	logger    *zap.Logger
}

func New(secret, accessKey string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		secret:    []byte(secret),
		accessKey: accessKey,
		ttl:       ttl,
		logger:    logger,
	}
}

// Token is the issued credential.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges the configured access key for a signed JWT.
func (uc *UseCase) Login(accessKey string) (*Token, error) {
	if uc.accessKey == "" {
		return nil, domain.NewError(domain.ErrCodeForbidden, "authentication is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(accessKey), []byte(uc.accessKey)) != 1 {
		uc.logger.Warn("rejected login with wrong access key")
		return nil, domain.ErrUnauthorized
	}

	expiresAt := time.Now().Add(uc.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   "board",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "signing token failed", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
