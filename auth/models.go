// Package auth handles authentication: user registration, login, JWT
// issuance and verification, and the middleware that turns a bearer token
// into an Actor identity carried in the request context.
package auth

import "time"

// User represents a registered account.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never exposed in responses
	CreatedAt      time.Time `json:"created_at"`
}
