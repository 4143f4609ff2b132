package usecase

import (
	"context"

	"go.uber.org/zap"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

// Trainer は1銘柄分の予測を生成・永続化します。*ForecastUsecaseがこれを満たします。
type Trainer interface {
	Train(ctx context.Context, ticker string) (*entity.Forecast, error)
}

// Limiter はリクエスト間隔を制御します。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RetrainSummary は一括再学習の結果です。
type RetrainSummary struct {
	Trained []string
	Failed  []string
}

// RetrainUsecase はカタログ全銘柄の予測を一括で再生成するユースケースです。
type RetrainUsecase struct {
	trainer Trainer
	limiter Limiter
}

// NewRetrainUsecase は新しい RetrainUsecase を作成します。
func NewRetrainUsecase(trainer Trainer, limiter Limiter) *RetrainUsecase {
	return &RetrainUsecase{trainer: trainer, limiter: limiter}
}

// RetrainAll は指定された全銘柄を順に再学習します。
// 1銘柄の失敗では止めずにログに出力して次へ進みます。コンテキストがキャンセルされた場合のみエラーを返します。
func (ru *RetrainUsecase) RetrainAll(ctx context.Context, tickers []string) (RetrainSummary, error) {
	var summary RetrainSummary
	for _, t := range tickers {
		if err := ru.limiter.Wait(ctx); err != nil {
			return summary, err
		}
		if _, err := ru.trainer.Train(ctx, t); err != nil {
			zap.L().Error("failed to retrain", zap.String("ticker", t), zap.Error(err))
			summary.Failed = append(summary.Failed, t)
			continue
		}
		summary.Trained = append(summary.Trained, t)
	}
	return summary, nil
}
