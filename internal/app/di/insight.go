package di

import (
	"context"

	"stock_forecast/internal/config"
	"stock_forecast/internal/feature/insight/adapters/gemini"
	"stock_forecast/internal/feature/insight/usecase"
	infrahttp "stock_forecast/internal/platform/http"
)

// NewTextAnalyzer creates a Gemini-backed analyzer with a timeout-bound HTTP client.
// It returns a nil analyzer when Gemini is disabled.
func NewTextAnalyzer(ctx context.Context, cfg config.GeminiConfig) (usecase.TextAnalyzer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: cfg.Timeout})
	a, err := gemini.NewGeminiAnalyzer(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Model}, httpClient)
	if err != nil {
		return nil, err
	}
	return a, nil
}
