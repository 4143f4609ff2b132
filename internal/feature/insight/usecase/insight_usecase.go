// Package usecase はinsightフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	forecastentity "stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/insight/domain"
	"stock_forecast/internal/feature/insight/domain/entity"
)

// PredictionReader は保存済みの予測を読み出します。ティッカーの正規化は実装側の責務です。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PredictionReader interface {
	GetPredictions(ctx context.Context, ticker string) ([]forecastentity.PricePrediction, error)
}

// TextAnalyzer はプロンプトから文章を生成します。
type TextAnalyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// InsightUsecase は予測に対するコメント生成を提供します。
type InsightUsecase struct {
	predictions PredictionReader
	analyzer    TextAnalyzer
	now         func() time.Time
}

// NewInsightUsecase はInsightUsecaseを生成します。analyzerがnilの場合、Explainは常にErrAnalyzerUnavailableを返します。
func NewInsightUsecase(predictions PredictionReader, analyzer TextAnalyzer) *InsightUsecase {
	return &InsightUsecase{predictions: predictions, analyzer: analyzer, now: time.Now}
}

// Explain は保存済みの予測を要約したコメントを生成します。
func (u *InsightUsecase) Explain(ctx context.Context, ticker string) (*entity.ForecastInsight, error) {
	if u.analyzer == nil {
		return nil, domain.ErrAnalyzerUnavailable
	}

	ps, err := u.predictions.GetPredictions(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, domain.ErrNoPredictions
	}

	normalized := ps[0].Ticker
	summary, err := u.analyzer.Analyze(ctx, BuildPrompt(normalized, ps))
	if err != nil {
		return nil, fmt.Errorf("insight analyzer failed for %s: %w", normalized, err)
	}
	return &entity.ForecastInsight{
		Ticker:      normalized,
		Summary:     strings.TrimSpace(summary),
		GeneratedAt: u.now(),
	}, nil
}

// BuildPrompt は予測表を埋め込んだプロンプトを組み立てます。
func BuildPrompt(ticker string, ps []forecastentity.PricePrediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following is a simulated %d-day price forecast for %s (demo data, not a real model).\n", len(ps), ticker)
	b.WriteString("date,open,high,low,close\n")
	for _, p := range ps {
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f\n", p.Date.UTC().Format("2006-01-02"), p.Open, p.High, p.Low, p.Close)
	}
	first, last := ps[0], ps[len(ps)-1]
	change := (last.Close - first.Open) / first.Open * 100
	fmt.Fprintf(&b, "Net change from first open to last close: %+.2f%%.\n", change)
	b.WriteString("In at most three sentences, describe the trend and volatility. Do not give investment advice.")
	return b.String()
}
