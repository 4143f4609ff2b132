// Package events はフォーキャスト生成イベントをKafkaへ送信します。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

// DefaultTopic は生成イベントの既定トピックです。
const DefaultTopic = "forecast.generated"

// ForecastGenerated は生成完了イベントのペイロードです。
type ForecastGenerated struct {
	Type             string            `json:"type"`
	Ticker           string            `json:"ticker"`
	MAE              float64           `json:"mae"`
	MSE              float64           `json:"mse"`
	RMSE             float64           `json:"rmse"`
	TrainingDuration int               `json:"trainingDuration"`
	GeneratedAt      time.Time         `json:"generatedAt"`
	Predictions      []PredictionEvent `json:"predictions"`
}

// PredictionEvent は1日分の予測値です。
type PredictionEvent struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// messageWriter は*kafka.Writerが満たすインターフェースです。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config はKafka接続設定です。
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	// Async がtrueの場合、WriteMessagesはバッチに積んだ時点で戻り、送信結果はログに出力します。
	Async bool
}

// KafkaPublisher はフォーキャスト生成イベントをKafkaへ送信します。
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher. Messages are keyed by ticker so one ticker's events stay ordered.
func NewKafkaPublisher(cfg Config) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		WriteTimeout: timeout,
		BatchTimeout: 50 * time.Millisecond,
		Async:        cfg.Async,
	}
	if cfg.Async {
		w.Completion = logCompletion
	}
	return &KafkaPublisher{writer: w, topic: topic}, nil
}

// logCompletion は非同期送信の失敗をログに出力します。
func logCompletion(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		zap.L().Warn("failed to deliver forecast event", zap.String("ticker", string(m.Key)), zap.Error(err))
	}
}

// PublishForecastGenerated sends one forecast.generated event.
func (p *KafkaPublisher) PublishForecastGenerated(ctx context.Context, f entity.Forecast) error {
	msg, err := NewMessage(f)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for %s: %w", p.topic, f.Metrics.Ticker, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewMessage encodes a forecast as a Kafka message keyed by ticker.
func NewMessage(f entity.Forecast) (kafka.Message, error) {
	ev := ForecastGenerated{
		Type:             DefaultTopic,
		Ticker:           f.Metrics.Ticker,
		MAE:              f.Metrics.MeanAbsoluteError,
		MSE:              f.Metrics.MeanSquaredError,
		RMSE:             f.Metrics.RootMeanSquaredError,
		TrainingDuration: f.Metrics.TrainingDurationSeconds,
		GeneratedAt:      f.Metrics.LastTrainedAt.UTC(),
		Predictions:      make([]PredictionEvent, 0, len(f.Predictions)),
	}
	for _, p := range f.Predictions {
		ev.Predictions = append(ev.Predictions, PredictionEvent{
			Date:  p.Date.UTC().Format("2006-01-02"),
			Open:  p.Open,
			High:  p.High,
			Low:   p.Low,
			Close: p.Close,
		})
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{Key: []byte(f.Metrics.Ticker), Value: b, Time: ev.GeneratedAt}, nil
}
