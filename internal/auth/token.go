// Package auth issues and validates table-session tokens.
//
// Scanning a table's QR code starts a guest session: the backend mints a
// token binding a fresh guest ID to the table, and every subsequent call
// carries it. Authenticated users get the same token shape with the user
// ID filled in.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("session token required")
)

// TokenManager handles session token generation and validation.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// SessionClaims are the custom JWT claims for a table session.
type SessionClaims struct {
	TableID     string `json:"table_id"`
	GuestID     string `json:"guest_id"`
	DisplayName string `json:"guest_name"`
	UserID      string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager with the given secret and token
// duration. secretKey should be a strong random string (e.g., 32 bytes).
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// StartSession mints a token for a participant joining the table. A fresh
// guest ID is generated unless the caller is an authenticated user.
func (m *TokenManager) StartSession(tableID, displayName, userID string) (string, *SessionClaims, error) {
	claims := &SessionClaims{
		TableID:     tableID,
		DisplayName: displayName,
		UserID:      userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	if userID == "" {
		claims.GuestID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims, nil
}

// Validate parses and validates a session token, returning the claims if valid.
func (m *TokenManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
