// Package dto はinsightフィーチャーのレスポンスDTOを定義します。
package dto

// InsightResponse はGET /stocks/:ticker/insight のレスポンスDTOです。
type InsightResponse struct {
	Ticker      string `json:"ticker"`
	Summary     string `json:"summary"`
	GeneratedAt string `json:"generatedAt"` // RFC3339
}
