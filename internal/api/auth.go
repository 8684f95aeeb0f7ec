package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the expiry claim out of the session token without
// verifying the signature. The platform verifies tokens; the client only
// wants to know when one is about to die so it can warn before a long queue
// wait outlives the session.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse session token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("session token has no expiry claim")
	}
	return exp.Time, nil
}
