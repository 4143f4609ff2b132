// Package entity defines the domain models for the insight feature.
package entity

import "time"

// ForecastInsight は予測に対するAI生成のコメントです。
type ForecastInsight struct {
	Ticker      string
	Summary     string
	GeneratedAt time.Time
}
