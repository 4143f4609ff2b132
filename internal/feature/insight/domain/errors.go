// Package domain defines domain-level errors for the insight feature.
package domain

import "errors"

var (
	// ErrNoPredictions indicates that the ticker has no persisted forecast to comment on.
	ErrNoPredictions = errors.New("no predictions available")

	// ErrAnalyzerUnavailable indicates that no text analyzer is configured.
	ErrAnalyzerUnavailable = errors.New("insight analyzer is not configured")
)
