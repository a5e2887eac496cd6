package auth

import (
	"errors"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// AccessClaims is what the API trusts from a verified bearer token.
// Subject is the identity provider's user id.
type AccessClaims struct {
	Subject   string
	ExpiresAt time.Time
}
