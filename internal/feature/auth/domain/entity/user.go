// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User is a registered user allowed to trigger model training.
type User struct {
	ID        uint
	Email     string // lowercase
	Password  string // bcrypt hash, never plaintext
	CreatedAt time.Time
}
