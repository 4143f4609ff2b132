// Package adapters はforecastフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
	"stock_forecast/internal/feature/forecast/usecase"
)

// StockModelModel is the GORM model for the stock_models table.
type StockModelModel struct {
	ID                      uint      `gorm:"primaryKey"`
	Ticker                  string    `gorm:"size:32;not null;uniqueIndex"`
	MAE                     float64   `gorm:"column:mae;not null"`
	MSE                     float64   `gorm:"column:mse;not null"`
	RMSE                    float64   `gorm:"column:rmse;not null"`
	ModelPath               string    `gorm:"size:255;not null"`
	TrainingDurationSeconds int       `gorm:"not null"`
	LastTrainedDate         time.Time `gorm:"not null"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TableName returns the table name for GORM.
func (StockModelModel) TableName() string {
	return "stock_models"
}

// StockPredictionModel is the GORM model for the stock_predictions table.
type StockPredictionModel struct {
	ID             uint      `gorm:"primaryKey"`
	Ticker         string    `gorm:"size:32;not null;uniqueIndex:prediction_ticker_date,priority:1"`
	PredictionDate time.Time `gorm:"type:date;not null;uniqueIndex:prediction_ticker_date,priority:2"`
	OpenPrice      float64   `gorm:"not null"`
	HighPrice      float64   `gorm:"not null"`
	LowPrice       float64   `gorm:"not null"`
	ClosePrice     float64   `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM.
func (StockPredictionModel) TableName() string {
	return "stock_predictions"
}

// Models はマイグレーション対象のモデル一覧です。
func Models() []any {
	return []any{&StockModelModel{}, &StockPredictionModel{}}
}

type forecastGorm struct {
	db *gorm.DB
}

var _ usecase.ForecastRepository = (*forecastGorm)(nil)

// NewForecastRepository は指定されたDB接続でforecastGormの新しいインスタンスを生成します。
func NewForecastRepository(db *gorm.DB) *forecastGorm {
	return &forecastGorm{db: db}
}

// Save は評価指標のupsert、既存予測の削除、新しい予測の挿入を1つのトランザクションで行います。
// いずれかが失敗した場合はロールバックされ、以前の状態が残ります。
func (r *forecastGorm) Save(ctx context.Context, metrics entity.ModelMetrics, predictions []entity.PricePrediction) error {
	m := toMetricsModel(metrics)
	rows := make([]StockPredictionModel, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, toPredictionModel(metrics.Ticker, p))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mae", "mse", "rmse", "model_path", "training_duration_seconds", "last_trained_date", "updated_at",
			}),
		}).Create(&m).Error; err != nil {
			return err
		}

		if err := tx.Where("ticker = ?", metrics.Ticker).Delete(&StockPredictionModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// FindMetrics はティッカーの評価指標を返します。存在しない場合はdomain.ErrModelNotFoundを返します。
func (r *forecastGorm) FindMetrics(ctx context.Context, ticker string) (*entity.ModelMetrics, error) {
	var m StockModelModel
	if err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrModelNotFound
		}
		return nil, err
	}
	out := toMetricsEntity(m)
	return &out, nil
}

// ListPredictions はティッカーの予測を日付昇順で返します。
func (r *forecastGorm) ListPredictions(ctx context.Context, ticker string) ([]entity.PricePrediction, error) {
	var rows []StockPredictionModel
	if err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("prediction_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePrediction, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PricePrediction{
			Ticker: m.Ticker,
			Date:   m.PredictionDate.UTC(),
			Open:   m.OpenPrice,
			High:   m.HighPrice,
			Low:    m.LowPrice,
			Close:  m.ClosePrice,
		})
	}
	return out, nil
}

func toMetricsModel(e entity.ModelMetrics) StockModelModel {
	return StockModelModel{
		Ticker:                  e.Ticker,
		MAE:                     e.MeanAbsoluteError,
		MSE:                     e.MeanSquaredError,
		RMSE:                    e.RootMeanSquaredError,
		ModelPath:               e.ModelArtifactPath,
		TrainingDurationSeconds: e.TrainingDurationSeconds,
		LastTrainedDate:         e.LastTrainedAt,
	}
}

func toMetricsEntity(m StockModelModel) entity.ModelMetrics {
	return entity.ModelMetrics{
		Ticker:                  m.Ticker,
		MeanAbsoluteError:       m.MAE,
		MeanSquaredError:        m.MSE,
		RootMeanSquaredError:    m.RMSE,
		ModelArtifactPath:       m.ModelPath,
		TrainingDurationSeconds: m.TrainingDurationSeconds,
		LastTrainedAt:           m.LastTrainedDate,
	}
}

func toPredictionModel(ticker string, p entity.PricePrediction) StockPredictionModel {
	return StockPredictionModel{
		Ticker:         ticker,
		PredictionDate: p.Date,
		OpenPrice:      p.Open,
		HighPrice:      p.High,
		LowPrice:       p.Low,
		ClosePrice:     p.Close,
	}
}
