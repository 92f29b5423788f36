// Package auth implements the signed access-token codec: issuing and
// verifying self-contained JWTs carrying identity, expiry, and a token-kind
// discriminator so an access token is never accepted where a refresh-grade
// token is required.
package auth

import (
	"errors"
	"time"

	"github.com/dkotlyar/passfort/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates what a signed token may be used for.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims includes the registered claims plus the user id and token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"uid"`
	TokenKind TokenKind `json:"kind"`
}

// GenerateToken mints an HS256-signed token for userID of the given kind,
// valid for validityDuration from now.
func GenerateToken(userID string, kind TokenKind, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		TokenKind: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies signature, expiry, and kind, and returns the claims.
// It returns common.ErrTokenExpired for an expired token and
// common.ErrInvalidToken for any other verification failure, including a
// kind mismatch.
func ParseToken(tokenString string, kind TokenKind, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.TokenKind != kind {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromToken verifies an access token and returns its subject.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := ParseToken(tokenString, KindAccess, secretKey)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
