package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the lifetime of an issued credential.
const TokenValidity = 8 * time.Hour

// Claims embeds the tenant identity into the credential. Both ids travel
// as strings so the token stays a plain HS256 JWT.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganisationID string `json:"org_id"`
	jwt.RegisteredClaims
}

// UserUUID parses the user id claim.
func (cl *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(cl.UserID)
}

// OrganisationUUID parses the organisation id claim.
func (cl *Claims) OrganisationUUID() (uuid.UUID, error) {
	return uuid.Parse(cl.OrganisationID)
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// IssueToken signs a fresh credential for the given user and organisation.
func IssueToken(userID, organisationID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         userID.String(),
		OrganisationID: organisationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a credential and
// returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
