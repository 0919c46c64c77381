// Package auth provides the authentication primitives of the Cohort Tools API:
// JWT issuance and verification, password hashing, signup validation, and
// per-client rate limiting.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cohorttools/cohort-api/internal/common"
)

// Claims carries the registered JWT claims plus the user identity claim.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// GenerateToken signs an HS256 token for the given user, embedding issuance
// and expiry timestamps. Rotating the secret invalidates every token issued
// before the rotation.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies signature and expiry and returns the embedded
// user id. Every failure mode (malformed token, bad signature, expiry)
// collapses into common.ErrorInvalidToken so callers cannot tell why a token
// was rejected.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.ErrorInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrorInvalidToken
	}

	return claims.UserID, nil
}
