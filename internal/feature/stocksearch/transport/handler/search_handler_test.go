package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock_forecast/internal/feature/stocksearch/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockSearchUsecase はSearchUsecaseインターフェースのモック実装です。
type mockSearchUsecase struct {
	SearchFunc func(ctx context.Context, query string) []entity.CatalogEntry
}

func (m *mockSearchUsecase) Search(ctx context.Context, query string) []entity.CatalogEntry {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil
}

func TestNewSearchHandler(t *testing.T) {
	t.Parallel()

	h := NewSearchHandler(&mockSearchUsecase{})

	assert.NotNil(t, h)
	assert.NotNil(t, h.uc)
}

// TestSearchHandler_Search はSearchハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestSearchHandler_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		mockSearch     func(ctx context.Context, query string) []entity.CatalogEntry
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns matching entries",
			url:  "/stocks/search?q=tcs",
			mockSearch: func(ctx context.Context, query string) []entity.CatalogEntry {
				assert.Equal(t, "tcs", query)
				return []entity.CatalogEntry{{Symbol: "TCS.NS", Name: "Tata Consultancy Services Limited", Exchange: "NSE"}}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"symbol":"TCS.NS","name":"Tata Consultancy Services Limited","exchange":"NSE"}]`,
		},
		{
			name: "success: missing q is passed as empty string",
			url:  "/stocks/search",
			mockSearch: func(ctx context.Context, query string) []entity.CatalogEntry {
				assert.Equal(t, "", query)
				return []entity.CatalogEntry{}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "success: nil from usecase renders empty array",
			url:  "/stocks/search?q=zzz",
			mockSearch: func(ctx context.Context, query string) []entity.CatalogEntry {
				return nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSearchHandler(&mockSearchUsecase{SearchFunc: tt.mockSearch})

			router := gin.New()
			router.GET("/stocks/search", h.Search)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
