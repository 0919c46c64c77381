// Package models defines the persistent records served by the Cohort Tools API.
package models

import "time"

// User is an identity record. Email is stored in its normalized (lowercased,
// trimmed) form and is unique across all users. PasswordHash is never included
// in JSON responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
