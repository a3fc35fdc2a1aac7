// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	PasswordHash      string     `json:"-"`
	IsActive          bool       `json:"is_active"`
	PasswordUpdatedAt *time.Time `json:"password_updated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
