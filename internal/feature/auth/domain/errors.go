// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrUserAlreadyExists indicates that a user with the given email already exists.
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned by login for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword indicates that the password does not meet the minimum requirements.
	ErrWeakPassword = errors.New("password is too weak")
)
