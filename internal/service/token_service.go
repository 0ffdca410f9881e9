package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/campushack/portal/internal/config"
	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is what a bearer token carries: account id (subject), email
// and role. Verification is stateless; early revocation is not supported.
type TokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenService interface {
	Issue(account *model.Account) (string, int64, error)
	Verify(tokenString string) (*TokenClaims, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTTTL,
	}
}

func (s *tokenService) Issue(account *model.Account) (string, int64, error) {
	expiresAt := time.Now().Add(s.ttl)

	claims := TokenClaims{
		Email: account.Email,
		Role:  account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

func (s *tokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.New(401, "invalid or expired token", errors.Join(apperror.ErrUnauthorized, err))
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, apperror.New(401, "invalid token claims", apperror.ErrUnauthorized)
	}

	return claims, nil
}
