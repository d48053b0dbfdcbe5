// pkg/token/token.go
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT claim set issued to authenticated users. The active
// tenant is an explicit claim resolved once at the edge; handlers receive it
// through the request context and never consult ambient session state.
type Claims struct {
	UserID   uint `json:"user_id"`
	TenantID uint `json:"tenant_id,omitempty"` // active tenant, 0 when none selected
	jwt.RegisteredClaims
}

// ValidateJWT parses, validates, and returns claims from a JWT string.
func ValidateJWT(tokenString string, secretKey string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}
	if secretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, errors.New("token is not yet valid")
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("token signature is invalid")
		}
		return nil, fmt.Errorf("could not parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	if claims.UserID == 0 {
		return nil, errors.New("user_id claim is missing or zero")
	}

	return claims, nil
}

// GenerateJWT signs an access token for userID with tenantID as the active
// tenant claim. tenants/switch re-issues the token with a new tenant claim.
func GenerateJWT(userID, tenantID uint, secretKey string, expiryMinutes int) (string, error) {
	expirationTime := time.Now().Add(time.Duration(expiryMinutes) * time.Minute)
	claims := &Claims{
		UserID:   userID,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "futsalculture",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
