// Package domain defines domain-level errors and rules for the forecast feature.
package domain

import "errors"

var (
	// ErrInvalidTicker indicates a missing or malformed ticker in the request.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrModelNotFound indicates that no model has been trained for the ticker yet.
	// It is not a failure: handlers render it as {exists:false}.
	ErrModelNotFound = errors.New("model not found")
)
