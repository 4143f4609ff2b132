// Package gemini はGoogle Gemini APIを使用した予測コメント生成クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"stock_forecast/internal/feature/insight/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Config はGeminiクライアントの設定です。
// APIKeyが空の場合、genaiは環境変数（GOOGLE_API_KEY、GOOGLE_GENAI_USE_VERTEXAIなど）とADCを使います。
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // テストやプロキシ用
}

// GeminiAnalyzer はGoogle Gemini APIを使用して文章を生成します。
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// GeminiAnalyzerがTextAnalyzerを実装していることをコンパイル時に検証します。
var _ usecase.TextAnalyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer はGeminiAnalyzerの新しいインスタンスを生成します。
// httpClientにはタイムアウト付きのクライアントを渡してください。
func NewGeminiAnalyzer(ctx context.Context, cfg Config, httpClient *http.Client) (*GeminiAnalyzer, error) {
	cc := &genai.ClientConfig{HTTPClient: httpClient}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// Analyze はプロンプトからテキストを生成します。
func (g *GeminiAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
