// Package auth inspects the optional session token. The client never
// validates tokens; the server does that. Reading the expiry locally just
// lets us warn before a login is attempted with a stale token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry means the token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

// Expiry extracts the exp claim without verifying the signature.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Expired reports whether the token's expiry is in the past. Tokens without
// a readable expiry are not considered expired; the server has the final
// word either way.
func Expired(token string, now time.Time) bool {
	exp, err := Expiry(token)
	if err != nil {
		return false
	}
	return exp.Before(now)
}
