package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies the stateless bearer tokens. The
// payload carries the user id and an absolute expiry; the signing
// algorithm is fixed to HS256.
type TokenService interface {
	Issue(userID int64) (token string, expiresAt time.Time, err error)
	Parse(token string) (userID int64, err error)
}

type accessTokenClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

type tokenServiceImpl struct {
	issuer     string
	signingKey []byte
	tokenTTL   time.Duration
}

func NewTokenService(issuer string, signingKey []byte, tokenTTL time.Duration) TokenService {
	return &tokenServiceImpl{
		issuer:     issuer,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
	}
}

func (s *tokenServiceImpl) Issue(userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *tokenServiceImpl) Parse(tokenString string) (int64, error) {
	t, err := jwt.ParseWithClaims(
		tokenString,
		&accessTokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("token is expired: %w", err)
		}
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := t.Claims.(*accessTokenClaims)
	if !ok {
		return 0, errors.New("failed to parse token claims")
	}
	return claims.UserID, nil
}
