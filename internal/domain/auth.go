package domain

import "time"

// Caller is the identity resolved from a request token.
type Caller struct {
	ID        int64
	Email     string
	Role      Role
	Suspended bool
}

// TokenClaims is the verified content of an auth token.
type TokenClaims struct {
	IdentityID     int64
	PasswordDigest string
	LoginTime      string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}
