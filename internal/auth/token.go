package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClientClaims is the payload of a client bearer token.
type ClientClaims struct {
	ClientID int64  `json:"sub"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

var ErrMissingSecret = errors.New("client token secret is not configured")

// ExtractTokenFromRequest returns the bearer token of the Authorization header, or "".
func ExtractTokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// CreateClientToken signs an HS256 token for the client valid for ttl.
func CreateClientToken(clientID int64, phone, name, secret string, ttl time.Duration, now time.Time) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrMissingSecret
	}
	claims := ClientClaims{
		ClientID: clientID,
		Phone:    phone,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign client token: %w", err)
	}
	return signed, nil
}

// VerifyClientToken validates signature, algorithm and expiry and returns the claims.
func VerifyClientToken(tokenString, secret string, now time.Time) (*ClientClaims, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	claims := &ClientClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid client token: %w", err)
	}
	if claims.ClientID <= 0 {
		return nil, errors.New("subject claim not found in token")
	}
	return claims, nil
}
