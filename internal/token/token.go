// Package token issues and verifies signed, time-limited password-reset
// tokens. A token embeds only the user id; validity is entirely a
// function of the signature and elapsed time, nothing is persisted.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned for a well-signed token past its expiry.
	ErrExpired = errors.New("token expired")

	// ErrInvalid is returned for a malformed or tampered token, or one
	// signed with a different key.
	ErrInvalid = errors.New("token invalid")
)

// Issuer signs and verifies reset tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue produces a token authorizing one password change for userID,
// valid for the configured TTL from now.
func (i *Issuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks the signature and expiry and returns the embedded user
// id. Expired and invalid tokens are distinct outcomes.
func (i *Issuer) Verify(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if !parsed.Valid {
		return 0, ErrInvalid
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID < 1 {
		return 0, ErrInvalid
	}
	return userID, nil
}
