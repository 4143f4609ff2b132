package dto

import "stock_forecast/internal/feature/forecast/domain/entity"

// PredictionItem は1日分の予測値のレスポンスDTOです。
type PredictionItem struct {
	Date  string  `json:"date"`  // YYYY-MM-DD
	Open  float64 `json:"open"`  // 始値
	High  float64 `json:"high"`  // 高値
	Low   float64 `json:"low"`   // 安値
	Close float64 `json:"close"` // 終値
}

// PredictionsResponse はGET /stocks/:ticker/predictions のレスポンスDTOです。
type PredictionsResponse struct {
	Ticker      string           `json:"ticker"`
	Predictions []PredictionItem `json:"predictions"`
	Message     string           `json:"message,omitempty"`
}

// NoPredictionsMessage は予測が存在しない場合のメッセージです。
const NoPredictionsMessage = "No predictions available. Train the model first."

// FromPredictions は予測をレスポンス用に変換します。nilは空スライスになります。
func FromPredictions(ps []entity.PricePrediction) []PredictionItem {
	out := make([]PredictionItem, 0, len(ps))
	for _, p := range ps {
		out = append(out, PredictionItem{
			Date:  p.Date.UTC().Format("2006-01-02"),
			Open:  p.Open,
			High:  p.High,
			Low:   p.Low,
			Close: p.Close,
		})
	}
	return out
}
